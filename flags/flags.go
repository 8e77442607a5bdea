package flags

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nojima/recurl/config"
	"github.com/nojima/recurl/exchange"
	"github.com/nojima/recurl/input"
	"github.com/nojima/recurl/output"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

type FlagSet interface {
	PrintUsage(w io.Writer)
}

type OptionSet struct {
	InputOptions    input.Options
	ExchangeOptions exchange.Options
	OutputOptions   output.Options

	Paginate    bool
	PageOptions exchange.PageOptions

	// ReadStdin is set when stdin is not a terminal, so the command can be
	// piped in without naming a file.
	ReadStdin bool

	SaveCookies string
	Verbose     bool
	Licenses    bool
}

type terminalInfo struct {
	stdinIsTerminal  bool
	stdoutIsTerminal bool
}

type configLoader func(path string) (config.Config, error)

// Parse parses the command line (args[0] is the program name) and returns
// the positional arguments. stdin and stdout are only inspected to tell
// whether they are terminals.
func Parse(args []string, stdin io.Reader, stdout io.Writer) ([]string, FlagSet, *OptionSet, error) {
	terminal := terminalInfo{
		stdinIsTerminal:  isTerminal(stdin),
		stdoutIsTerminal: isTerminal(stdout),
	}
	positional, flagSet, optionSet, err := parse(args, terminal, config.Load)
	if err != nil {
		return nil, flagSet, nil, err
	}
	optionSet.InputOptions.PromptPassword = askPassword
	return positional, flagSet, optionSet, nil
}

func isTerminal(stream interface{}) bool {
	f, ok := stream.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func parse(args []string, terminal terminalInfo, loadConfig configLoader) ([]string, FlagSet, *OptionSet, error) {
	outputOptions := output.Options{}
	exchangeOptions := exchange.Options{}
	printFlag := "\000" // "\000" is a special value that indicates user did not specified --print
	var (
		timeout     string
		follow      bool
		raw         bool
		forceHTTP1  bool
		paginate    bool
		pageParam   string
		startPage   int
		perPage     int
		maxPages    int
		outputFile  string
		overwrite   bool
		saveCookies string
		configPath  string
		verbose     bool
		licenses    bool
	)

	flagSet := getopt.New()
	flagSet.SetParameters("FILE")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (HBhb)")
	timeoutOpt := flagSet.StringVarLong(&timeout, "timeout", 't', "timeout of each request, as seconds or a duration (default 30s)")
	flagSet.BoolVarLong(&follow, "follow", 'F', "follow redirects")
	flagSet.BoolVarLong(&raw, "raw", 'r', "print bodies without formatting")
	flagSet.BoolVarLong(&forceHTTP1, "http1", 0, "disable HTTP/2")
	flagSet.BoolVarLong(&paginate, "paginate", 'P', "fetch every page of a JSON array endpoint")
	pageParamOpt := flagSet.StringVarLong(&pageParam, "page-param", 0, "query parameter holding the page number (default page)")
	flagSet.IntVarLong(&startPage, "start-page", 0, "first page number")
	perPageOpt := flagSet.IntVarLong(&perPage, "per-page", 0, "items per full page (default 10)")
	maxPagesOpt := flagSet.IntVarLong(&maxPages, "max-pages", 0, "stop after this many pages")
	flagSet.StringVarLong(&outputFile, "output", 'o', "write accumulated pages to this file")
	flagSet.BoolVarLong(&overwrite, "overwrite", 0, "overwrite the --output file if it exists")
	flagSet.StringVarLong(&saveCookies, "save-cookies", 0, "save the cookie jar to this file after the run")
	flagSet.StringVarLong(&configPath, "config", 0, "read settings from this TOML file")
	flagSet.BoolVarLong(&verbose, "verbose", 'v', "log diagnostics to stderr")
	flagSet.BoolVarLong(&licenses, "licenses", 0, "print licenses of dependencies and exit")
	if err := flagSet.Getopt(args, nil); err != nil {
		return nil, flagSet, nil, errors.Wrap(err, "parsing flags")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, flagSet, nil, err
	}

	// Parse --print
	if err := parsePrintFlag(printFlag, terminal.stdoutIsTerminal, &outputOptions); err != nil {
		return nil, flagSet, nil, err
	}

	// Parse --timeout
	if !timeoutOpt.Seen() {
		timeout = cfg.Timeout
	}
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, flagSet, nil, err
	}
	exchangeOptions.Timeout = d
	exchangeOptions.FollowRedirects = follow || cfg.FollowRedirects
	exchangeOptions.ForceHTTP1 = forceHTTP1
	exchangeOptions.UserAgent = cfg.UserAgent

	// Pagination
	if !pageParamOpt.Seen() {
		pageParam = cfg.PageParam
	}
	if !perPageOpt.Seen() {
		perPage = cfg.PerPage
	}
	if !maxPagesOpt.Seen() {
		maxPages = cfg.MaxPages
	}
	if paginate && (perPage <= 0 || pageParam == "") {
		return nil, flagSet, nil, errors.New("--paginate needs a page parameter and a positive --per-page")
	}
	if outputFile != "" && !paginate {
		return nil, flagSet, nil, errors.New("--output is only supported with --paginate")
	}

	// Color and formatting
	outputOptions.EnableFormat = !raw
	outputOptions.EnableColor = terminal.stdoutIsTerminal
	outputOptions.OutputFile = outputFile
	outputOptions.Overwrite = overwrite

	optionSet := &OptionSet{
		ExchangeOptions: exchangeOptions,
		OutputOptions:   outputOptions,
		Paginate:        paginate,
		PageOptions: exchange.PageOptions{
			Param:    pageParam,
			Start:    startPage,
			PerPage:  perPage,
			MaxPages: maxPages,
		},
		ReadStdin:   !terminal.stdinIsTerminal,
		SaveCookies: saveCookies,
		Verbose:     verbose,
		Licenses:    licenses,
	}
	return flagSet.Args(), flagSet, optionSet, nil
}

func parsePrintFlag(printFlag string, stdoutIsTerminal bool, outputOptions *output.Options) error {
	if printFlag == "\000" {
		// --print is not specified
		if stdoutIsTerminal {
			outputOptions.PrintResponseHeader = true
			outputOptions.PrintResponseBody = true
		} else {
			outputOptions.PrintResponseBody = true
		}
	} else {
		for _, c := range printFlag {
			switch c {
			case 'H':
				outputOptions.PrintRequestHeader = true
			case 'B':
				outputOptions.PrintRequestBody = true
			case 'h':
				outputOptions.PrintResponseHeader = true
			case 'b':
				outputOptions.PrintResponseBody = true
			default:
				return errors.Errorf("Invalid char in --print value (must be consist of HBhb): %c", c)
			}
		}
	}
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}
