// Package recurl replays a curl command read from a file.
package recurl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/nojima/recurl/exchange"
	"github.com/nojima/recurl/flags"
	"github.com/nojima/recurl/input"
	"github.com/nojima/recurl/output"
	"github.com/nojima/recurl/version"
	"github.com/pkg/errors"
)

func Main() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
}

// Run is Main with explicit arguments and streams.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Parse flags
	positional, usage, optionSet, err := flags.Parse(args, stdin, stdout)
	if err != nil {
		if usage != nil {
			usage.PrintUsage(stderr)
		}
		return err
	}
	if optionSet.Licenses {
		version.PrintLicenses(stdout)
		return nil
	}
	logger := newLogger(stderr, optionSet.Verbose)

	// Read the curl command
	command, err := readCommand(positional, optionSet.ReadStdin, stdin)
	if err != nil {
		usage.PrintUsage(stderr)
		return err
	}

	inputOptions := optionSet.InputOptions
	inputOptions.Logger = logger
	spec, err := input.Parse(command, &inputOptions)
	if err != nil {
		if _, ok := errors.Cause(err).(*input.UsageError); ok {
			usage.PrintUsage(stderr)
		}
		return err
	}

	exchangeOptions := optionSet.ExchangeOptions
	exchangeOptions.Logger = logger
	session, err := exchange.NewSession(spec, &exchangeOptions)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(stdout)
	defer writer.Flush()
	printer := output.NewPrinter(writer, &optionSet.OutputOptions)

	if optionSet.Paginate {
		err = runPages(ctx, session, optionSet, printer, stderr)
	} else {
		err = runOnce(ctx, session, &optionSet.OutputOptions, printer, writer)
	}
	// A 4xx or 5xx response still saves the cookie jar.
	if _, ok := errors.Cause(err).(*exchange.StatusError); err != nil && !ok {
		return err
	}

	if optionSet.SaveCookies != "" || spec.CookieJarFile() != "" {
		if _, err := session.SaveCookies(optionSet.SaveCookies); err != nil {
			return err
		}
	}
	return err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func readCommand(positional []string, readStdin bool, stdin io.Reader) (string, error) {
	switch {
	case len(positional) > 1:
		return "", errors.Errorf("too many arguments: %v", positional[1:])
	case len(positional) == 0 && !readStdin:
		return "", errors.New("FILE is required")
	case len(positional) == 0 || positional[0] == "-":
		data, err := io.ReadAll(stdin)
		return string(data), errors.Wrap(err, "reading command from stdin")
	default:
		data, err := os.ReadFile(positional[0])
		return string(data), errors.Wrap(err, "reading command file")
	}
}

func runOnce(ctx context.Context, session *exchange.Session, options *output.Options, printer output.Printer, writer *bufio.Writer) error {
	ex, err := session.Execute(ctx, nil)
	if err != nil {
		return err
	}

	if err := printRequest(ex.Request, options, printer, writer); err != nil {
		return err
	}

	resp := ex.Response
	if options.PrintResponseHeader {
		if err := printer.PrintStatusLine(resp.Proto, resp.Status, resp.StatusCode); err != nil {
			return err
		}
		if err := printer.PrintHeader(resp.Header); err != nil {
			return err
		}
		writer.Flush()
	}
	if options.PrintResponseBody {
		if err := printer.PrintBody(bytes.NewReader(ex.Body), resp.Header.Get("Content-Type")); err != nil {
			return err
		}
	}
	return exchange.RaiseForStatus(resp)
}

func printRequest(r *http.Request, options *output.Options, printer output.Printer, writer io.Writer) error {
	if options.PrintRequestHeader {
		if err := printer.PrintRequestLine(r); err != nil {
			return err
		}
		if err := printer.PrintHeader(r.Header); err != nil {
			return err
		}
	}
	if options.PrintRequestBody && r.GetBody != nil {
		body, err := r.GetBody()
		if err != nil {
			return errors.Wrap(err, "reading request body")
		}
		defer body.Close()
		if err := printer.PrintBody(body, r.Header.Get("Content-Type")); err != nil {
			return err
		}
		if _, err := io.WriteString(writer, "\n\n"); err != nil {
			return errors.Wrap(err, "printing request body")
		}
	}
	return nil
}

// runPages fetches every page and prints or saves the concatenated array.
func runPages(ctx context.Context, session *exchange.Session, optionSet *flags.OptionSet, printer output.Printer, stderr io.Writer) error {
	pages, err := session.AccumulatePages(ctx, optionSet.PageOptions)
	if err != nil {
		return err
	}

	data, err := json.Marshal(pages.Items)
	if err != nil {
		return errors.Wrap(err, "encoding accumulated pages")
	}

	if optionSet.OutputOptions.OutputFile != "" {
		fw := output.NewFileWriter(&optionSet.OutputOptions)
		if err := fw.Write(data); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Saved to %s\n", fw.Path())
	} else if err := printer.PrintBody(bytes.NewReader(data), "application/json"); err != nil {
		return err
	}
	return output.PrintPageSummary(stderr, len(pages.Items), pages.Pages, pages.Bytes)
}
