package input

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/nojima/recurl/addr"
	"github.com/pkg/errors"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

const defaultScheme = "http"

type assembler struct {
	fv      *flagValues
	options *Options
	logger  *slog.Logger
}

func (a *assembler) assemble() (*RequestSpec, error) {
	u, err := parseTarget(a.fv.url)
	if err != nil {
		return nil, err
	}

	spec := &RequestSpec{
		url:           u,
		verifyTLS:     !a.fv.insecure,
		cookieJarFile: a.fv.cookieJar,
	}

	spec.body = a.selectBody()
	spec.method = a.fv.method
	if spec.method == "" {
		spec.method = MethodGet
		if !spec.body.IsEmpty() {
			spec.method = MethodPost
		}
	}

	if err := a.resolveCredentials(spec); err != nil {
		return nil, err
	}

	// Cookies from -b come first so that a Cookie header given later wins.
	jar := cookieSet{domain: u.Hostname()}
	for _, raw := range a.fv.cookies {
		if err := jar.addString(raw); err != nil {
			return nil, err
		}
	}
	for _, raw := range a.fv.headers {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, newParseError("header", raw, errors.New("expected 'Name: value'"))
		}
		value = strings.TrimSpace(value)
		if strings.EqualFold(strings.Trim(name, "$"), "cookie") {
			if err := jar.addString(value); err != nil {
				return nil, err
			}
			continue
		}
		spec.header = spec.header.With(name, value)
	}
	spec.cookies = jar.cookies

	a.logger.Debug("assembled request",
		"method", spec.method,
		"url", spec.url.String(),
		"headers", spec.header.Len(),
		"cookies", len(spec.cookies),
		"body", spec.body.Kind().String(),
		"proxy", spec.proxy != nil,
		"verify_tls", spec.verifyTLS)
	return spec, nil
}

// parseTarget parses the positional URL, defaulting to http:// when the
// scheme is missing as curl does.
func parseTarget(raw string) (addr.URL, error) {
	s := raw
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}
	u, err := addr.Parse(s)
	if err != nil {
		return addr.URL{}, newParseError("URL", raw, err)
	}
	if u.Hostname() == "" {
		return addr.URL{}, newParseError("URL", raw, errors.New("missing host"))
	}
	return u, nil
}

// selectBody applies the fixed precedence -d > --data-binary > --data-raw.
func (a *assembler) selectBody() Body {
	switch {
	case a.fv.data != nil:
		a.logger.Debug("body taken from --data")
		return NewTextBody(*a.fv.data)
	case a.fv.dataBinary != nil:
		a.logger.Debug("body taken from --data-binary")
		return NewBinaryBody([]byte(*a.fv.dataBinary))
	case a.fv.dataRaw != nil:
		a.logger.Debug("body taken from --data-raw")
		return NewTextBody(*a.fv.dataRaw)
	default:
		return Body{}
	}
}

// resolveCredentials decides between proxy credentials and origin auth.
// There is a single -u flag: with --proxy it authenticates the proxy and the
// origin gets no Basic auth from it.
func (a *assembler) resolveCredentials(spec *RequestSpec) error {
	if a.fv.proxy != nil {
		credentials := a.fv.user
		if credentials == nil {
			credentials = a.fv.proxyUser
		}
		proxy, err := buildProxy(*a.fv.proxy, credentials)
		if err != nil {
			return err
		}
		spec.proxy = proxy
		if a.fv.user != nil {
			a.logger.Debug("-u credentials used for the proxy")
			spec.auth = urlAuth(spec.url)
			return nil
		}
	}

	if a.fv.user != nil {
		auth, err := a.splitUser(*a.fv.user)
		if err != nil {
			return err
		}
		spec.auth = auth
		return nil
	}

	spec.auth = urlAuth(spec.url)
	return nil
}

func (a *assembler) splitUser(value string) (*BasicAuth, error) {
	user, password, ok := strings.Cut(value, ":")
	if ok {
		return &BasicAuth{User: user, Password: password}, nil
	}
	if a.options != nil && a.options.PromptPassword != nil {
		password, err := a.options.PromptPassword(user)
		if err != nil {
			return nil, err
		}
		return &BasicAuth{User: user, Password: password}, nil
	}
	return nil, errors.WithStack(&AuthFormatError{User: value})
}

func urlAuth(u addr.URL) *BasicAuth {
	user, ok := u.User()
	if !ok {
		return nil
	}
	password, _ := u.Password()
	return &BasicAuth{User: user, Password: password}
}

func buildProxy(raw string, credentials *string) (*Proxy, error) {
	s := raw
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}
	u, err := addr.Parse(s)
	if err != nil || u.Hostname() == "" {
		if err == nil {
			err = errors.New("missing host")
		}
		return nil, newParseError("proxy", raw, err)
	}

	proxy := &Proxy{Scheme: u.Scheme(), Host: u.Hostname()}
	if port, ok := u.Port(); ok {
		proxy.Port = port
	}
	if credentials != nil {
		user, password, hasPassword := strings.Cut(*credentials, ":")
		proxy.User, proxy.Password = user, password
		proxy.Credentials, proxy.HasPassword = true, hasPassword
	} else if user, ok := u.User(); ok {
		proxy.User, proxy.Credentials = user, true
		proxy.Password, proxy.HasPassword = u.Password()
	}
	return proxy, nil
}

// cookieSet collects cookies for one request host; a later cookie with the
// same name, domain and path replaces the earlier one.
type cookieSet struct {
	domain  string
	cookies []Cookie
}

// addString parses "k=v; k2=v2". Blank segments are skipped.
func (s *cookieSet) addString(raw string) error {
	for _, pair := range strings.Split(raw, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return newParseError("cookie", pair, errors.New("expected 'name=value'"))
		}
		s.add(Cookie{
			Name:   strings.TrimSpace(unquote(name)),
			Value:  strings.TrimSpace(unquote(value)),
			Domain: s.domain,
			Path:   "/",
		})
	}
	return nil
}

func (s *cookieSet) add(c Cookie) {
	for i, existing := range s.cookies {
		if existing.Name == c.Name && existing.Domain == c.Domain && existing.Path == c.Path {
			s.cookies[i] = c
			return
		}
	}
	s.cookies = append(s.cookies, c)
}

func unquote(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
