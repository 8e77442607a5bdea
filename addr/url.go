// Package addr provides URL, an immutable URL value with multimap access to
// its query and path parameters.
package addr

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*$`)

// ParseError reports a string that cannot be split into URL components.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse URL '%s': %s", e.URL, e.Reason)
}

// URL is an immutable parsed URL. Path and Fragment hold decoded text; the
// query and the ';' parameters of the last path segment are kept as Values.
// Methods never modify the receiver.
type URL struct {
	scheme   string
	hostname string
	port     int
	hasPort  bool
	path     string
	params   Values
	query    Values
	fragment string

	username    string
	password    string
	hasUser     bool
	hasPassword bool
}

// Parse splits raw into its components.
func Parse(raw string) (URL, error) {
	fail := func(reason string) (URL, error) {
		return URL{}, &ParseError{URL: raw, Reason: reason}
	}

	if raw == "" {
		return fail("empty URL")
	}
	for _, r := range raw {
		if r <= ' ' || r == 0x7f {
			return fail("contains whitespace or control characters")
		}
	}

	var u URL
	rest := raw

	if i := strings.IndexByte(rest, ':'); i > 0 && reScheme.MatchString(rest[:i]) {
		u.scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		if err := u.setAuthority(rest[:end]); err != nil {
			return fail(err.Error())
		}
		rest = rest[end:]
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		fragment, err := url.PathUnescape(rest[i+1:])
		if err != nil {
			return fail("invalid escape in fragment")
		}
		u.fragment = fragment
		rest = rest[:i]
	}

	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.query = ParseValues(rest[i+1:], '&')
		rest = rest[:i]
	}

	// Parameters belong to the last path segment only.
	lastSlash := strings.LastIndexByte(rest, '/')
	if i := strings.IndexByte(rest[lastSlash+1:], ';'); i >= 0 {
		i += lastSlash + 1
		u.params = ParseValues(rest[i+1:], ';')
		rest = rest[:i]
	}

	path, err := url.PathUnescape(rest)
	if err != nil {
		return fail("invalid escape in path")
	}
	u.path = path

	return u, nil
}

func (u *URL) setAuthority(authority string) error {
	hostport := authority
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		userinfo := authority[:i]
		hostport = authority[i+1:]

		name, secret, hasSecret := strings.Cut(userinfo, ":")
		username, err := url.PathUnescape(name)
		if err != nil {
			return fmt.Errorf("invalid escape in user name")
		}
		u.username, u.hasUser = username, true
		if hasSecret {
			password, err := url.PathUnescape(secret)
			if err != nil {
				return fmt.Errorf("invalid escape in password")
			}
			u.password, u.hasPassword = password, true
		}
	}

	host, port := hostport, ""
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return fmt.Errorf("missing ']' in host")
		}
		host = hostport[1:end]
		after := hostport[end+1:]
		if after != "" {
			if after[0] != ':' {
				return fmt.Errorf("unexpected characters after host")
			}
			port = after[1:]
		}
	} else {
		if strings.ContainsAny(hostport, "[]") {
			return fmt.Errorf("unbalanced brackets in host")
		}
		if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
			host, port = hostport[:i], hostport[i+1:]
		}
	}
	u.hostname = strings.ToLower(host)

	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 || strings.IndexFunc(port, isNotDigit) >= 0 {
			return fmt.Errorf("port '%s' is not a number in 0-65535", port)
		}
		u.port, u.hasPort = n, true
	}
	return nil
}

func isNotDigit(r rune) bool {
	return r < '0' || r > '9'
}

func (u URL) Scheme() string   { return u.scheme }
func (u URL) Hostname() string { return u.hostname }
func (u URL) Path() string     { return u.path }
func (u URL) Fragment() string { return u.fragment }
func (u URL) Query() Values    { return u.query }
func (u URL) Params() Values   { return u.params }

// Port returns the explicit port, if any.
func (u URL) Port() (int, bool) {
	return u.port, u.hasPort
}

// User returns the user name from the userinfo, if any.
func (u URL) User() (string, bool) {
	return u.username, u.hasUser
}

// Password returns the password from the userinfo, if any.
func (u URL) Password() (string, bool) {
	return u.password, u.hasPassword
}

// IsAbs reports whether the URL has a scheme.
func (u URL) IsAbs() bool {
	return u.scheme != ""
}

// Host returns "hostname[:port]" with IPv6 literals bracketed.
func (u URL) Host() string {
	host := u.hostname
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if u.hasPort {
		host += ":" + strconv.Itoa(u.port)
	}
	return host
}

func (u URL) authority() string {
	authority := u.Host()
	if u.hasUser {
		var info *url.Userinfo
		if u.hasPassword {
			info = url.UserPassword(u.username, u.password)
		} else {
			info = url.User(u.username)
		}
		authority = info.String() + "@" + authority
	}
	return authority
}

// String serializes the URL as
// scheme://[user[:password]@]host[:port]/path;params?query#fragment.
func (u URL) String() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}

	path := escapePath(u.path)
	if authority := u.authority(); authority != "" {
		b.WriteString("//")
		b.WriteString(authority)
		if path != "" && !strings.HasPrefix(path, "/") {
			b.WriteByte('/')
		}
	}
	b.WriteString(path)

	if u.params.Len() > 0 {
		b.WriteByte(';')
		b.WriteString(u.params.Encode(';'))
	}
	if u.query.Len() > 0 {
		b.WriteByte('?')
		b.WriteString(u.query.Encode('&'))
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString((&url.URL{Fragment: u.fragment}).EscapedFragment())
	}
	return b.String()
}

// escapePath escapes a decoded path. net/url leaves ';' alone in paths, but
// here it would start the parameter list on the next parse.
func escapePath(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return strings.ReplaceAll(escaped, ";", "%3B")
}

// Join resolves ref against u following RFC 3986 section 5.2. An absolute
// ref replaces u entirely.
func (u URL) Join(ref string) (URL, error) {
	base, err := url.Parse(u.String())
	if err != nil {
		return URL{}, &ParseError{URL: u.String(), Reason: err.Error()}
	}
	reference, err := url.Parse(ref)
	if err != nil {
		return URL{}, &ParseError{URL: ref, Reason: err.Error()}
	}
	return Parse(base.ResolveReference(reference).String())
}

// JoinURL is Join for a reference that is already a URL.
func (u URL) JoinURL(ref URL) (URL, error) {
	return u.Join(ref.String())
}

// Equal reports whether every component of u and other matches.
func (u URL) Equal(other URL) bool {
	return u.scheme == other.scheme &&
		u.hostname == other.hostname &&
		u.port == other.port && u.hasPort == other.hasPort &&
		u.path == other.path &&
		u.fragment == other.fragment &&
		u.username == other.username && u.hasUser == other.hasUser &&
		u.password == other.password && u.hasPassword == other.hasPassword &&
		u.query.Equal(other.query) &&
		u.params.Equal(other.params)
}
