package input

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const commandName = "curl"

type flagKind int

const (
	switchFlag flagKind = iota // takes no value
	valueFlag                  // takes exactly one value
)

type flagID int

const (
	flagRequest flagID = iota
	flagHeader
	flagData
	flagDataBinary
	flagDataRaw
	flagUser
	flagInsecure
	flagProxy
	flagProxyUser
	flagCookie
	flagCookieJar
)

type flagDef struct {
	id    flagID
	long  string
	short rune
	kind  flagKind
}

func (d *flagDef) String() string {
	return "--" + d.long
}

var flagDefs = []*flagDef{
	{id: flagRequest, long: "request", short: 'X', kind: valueFlag},
	{id: flagHeader, long: "header", short: 'H', kind: valueFlag},
	{id: flagData, long: "data", short: 'd', kind: valueFlag},
	{id: flagDataBinary, long: "data-binary", kind: valueFlag},
	{id: flagDataRaw, long: "data-raw", kind: valueFlag},
	{id: flagUser, long: "user", short: 'u', kind: valueFlag},
	{id: flagInsecure, long: "insecure", short: 'k', kind: switchFlag},
	{id: flagProxy, long: "proxy", short: 'x', kind: valueFlag},
	{id: flagProxyUser, long: "proxy-user", kind: valueFlag},
	{id: flagCookie, long: "cookie", short: 'b', kind: valueFlag},
	{id: flagCookieJar, long: "cookie-jar", short: 'c', kind: valueFlag},
}

var (
	longFlags  = map[string]*flagDef{}
	shortFlags = map[rune]*flagDef{}
)

func init() {
	for _, def := range flagDefs {
		longFlags[def.long] = def
		if def.short != 0 {
			shortFlags[def.short] = def
		}
	}
}

// flagValues holds the raw result of matching the tokens against the
// grammar. Optional single-valued flags are nil when absent.
type flagValues struct {
	url        string
	method     Method
	headers    []string
	data       *string
	dataBinary *string
	dataRaw    *string
	user       *string
	insecure   bool
	proxy      *string
	proxyUser  *string
	cookies    []string
	cookieJar  string
}

func parseFlags(tokens []string) (*flagValues, error) {
	if len(tokens) == 0 || tokens[0] != commandName {
		cmd := ""
		if len(tokens) > 0 {
			cmd = tokens[0]
		}
		return nil, errors.WithStack(&InvalidCommandError{Command: cmd})
	}

	fv := &flagValues{}
	var positional []string
	onlyPositional := false

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		var err error
		switch {
		case onlyPositional || token == "-" || !strings.HasPrefix(token, "-"):
			positional = append(positional, token)
		case token == "--":
			onlyPositional = true
		case strings.HasPrefix(token, "--"):
			i, err = fv.applyLong(tokens, i)
		default:
			i, err = fv.applyShort(tokens, i)
		}
		if err != nil {
			return nil, err
		}
	}

	switch len(positional) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		fv.url = positional[0]
	default:
		return nil, newUsageError(fmt.Sprintf("unrecognized arguments: %s", strings.Join(positional[1:], " ")))
	}
	return fv, nil
}

// applyLong handles "--name", "--name value" and "--name=value".
func (fv *flagValues) applyLong(tokens []string, i int) (int, error) {
	name, value, hasValue := strings.Cut(tokens[i][2:], "=")
	def, ok := longFlags[name]
	if !ok {
		return i, errors.WithStack(&UnsupportedFlagError{Flag: "--" + name})
	}

	switch def.kind {
	case switchFlag:
		if hasValue {
			return i, errors.WithStack(&UnsupportedFlagError{Flag: def.String(), Reason: "does not take a value"})
		}
		return i, fv.set(def, "")
	default:
		if !hasValue {
			if i+1 >= len(tokens) {
				return i, errors.WithStack(&UnsupportedFlagError{Flag: def.String(), Reason: "requires a value"})
			}
			i++
			value = tokens[i]
		}
		return i, fv.set(def, value)
	}
}

// applyShort handles "-k", "-X POST", "-XPOST" and clusters such as "-kX POST".
func (fv *flagValues) applyShort(tokens []string, i int) (int, error) {
	cluster := []rune(tokens[i][1:])
	for j, ch := range cluster {
		def, ok := shortFlags[ch]
		if !ok {
			return i, errors.WithStack(&UnsupportedFlagError{Flag: "-" + string(ch)})
		}
		if def.kind == switchFlag {
			if err := fv.set(def, ""); err != nil {
				return i, err
			}
			continue
		}

		if j+1 < len(cluster) {
			return i, fv.set(def, string(cluster[j+1:]))
		}
		if i+1 >= len(tokens) {
			return i, errors.WithStack(&UnsupportedFlagError{Flag: "-" + string(ch), Reason: "requires a value"})
		}
		return i + 1, fv.set(def, tokens[i+1])
	}
	return i, nil
}

func (fv *flagValues) set(def *flagDef, value string) error {
	switch def.id {
	case flagRequest:
		method, ok := parseMethod(value)
		if !ok {
			return errors.WithStack(&UnsupportedFlagError{
				Flag:   def.String(),
				Reason: fmt.Sprintf("invalid method '%s' (choose from %s)", value, joinMethods()),
			})
		}
		fv.method = method
	case flagHeader:
		fv.headers = append(fv.headers, value)
	case flagData:
		fv.data = &value
	case flagDataBinary:
		fv.dataBinary = &value
	case flagDataRaw:
		fv.dataRaw = &value
	case flagUser:
		fv.user = &value
	case flagInsecure:
		fv.insecure = true
	case flagProxy:
		fv.proxy = &value
	case flagProxyUser:
		fv.proxyUser = &value
	case flagCookie:
		fv.cookies = append(fv.cookies, value)
	case flagCookieJar:
		fv.cookieJar = value
	default:
		return errors.Errorf("unhandled flag: %s", def)
	}
	return nil
}
