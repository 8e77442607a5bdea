package input

import (
	"net/http"
	"strings"

	"github.com/nojima/recurl/addr"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPatch   Method = "PATCH"
)

var methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead, MethodOptions, MethodPatch}

func parseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(s))
	for _, known := range methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func joinMethods() string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

type Field struct {
	Name  string
	Value string
}

// Header is an ordered set of header fields with case-insensitive, unique
// names. Setting a name that is already present replaces its value in place.
type Header struct {
	fields []Field
}

func (h Header) index(name string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// With returns a copy of h with name set to value.
func (h Header) With(name, value string) Header {
	fields := append([]Field(nil), h.fields...)
	if i := h.index(name); i >= 0 {
		fields[i] = Field{Name: name, Value: value}
	} else {
		fields = append(fields, Field{Name: name, Value: value})
	}
	return Header{fields: fields}
}

func (h Header) Get(name string) (string, bool) {
	if i := h.index(name); i >= 0 {
		return h.fields[i].Value, true
	}
	return "", false
}

func (h Header) Len() int {
	return len(h.fields)
}

func (h Header) Fields() []Field {
	return append([]Field(nil), h.fields...)
}

// HTTPHeader converts h to a net/http header map.
func (h Header) HTTPHeader() http.Header {
	header := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		header.Set(f.Name, f.Value)
	}
	return header
}

type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

type BodyKind int

const (
	NoBody BodyKind = iota
	TextBody
	BinaryBody
)

func (k BodyKind) String() string {
	switch k {
	case TextBody:
		return "text"
	case BinaryBody:
		return "binary"
	default:
		return "none"
	}
}

// Body is the request payload: nothing, text or raw bytes.
type Body struct {
	kind BodyKind
	text string
	data []byte
}

func NewTextBody(text string) Body {
	return Body{kind: TextBody, text: text}
}

func NewBinaryBody(data []byte) Body {
	return Body{kind: BinaryBody, data: append([]byte{}, data...)}
}

func (b Body) Kind() BodyKind {
	return b.kind
}

func (b Body) IsEmpty() bool {
	return b.kind == NoBody
}

// Text returns the payload as a string whatever its kind.
func (b Body) Text() string {
	if b.kind == BinaryBody {
		return string(b.data)
	}
	return b.text
}

// Bytes returns a copy of the payload.
func (b Body) Bytes() []byte {
	if b.kind == BinaryBody {
		return append([]byte{}, b.data...)
	}
	if b.kind == TextBody {
		return []byte(b.text)
	}
	return nil
}

type BasicAuth struct {
	User     string
	Password string
}

// Proxy is the forward proxy built from --proxy. Port is zero when the
// proxy address carried none.
type Proxy struct {
	Scheme      string
	Host        string
	Port        int
	User        string
	Password    string
	Credentials bool
	HasPassword bool
}

// URL renders the proxy as scheme://[user[:password]@]host[:port]/.
func (p Proxy) URL() string {
	changes := []addr.Change{addr.WithScheme(p.Scheme), addr.WithHostname(p.Host), addr.WithPath("/")}
	if p.Port != 0 {
		changes = append(changes, addr.WithPort(p.Port))
	}
	if p.Credentials {
		if p.HasPassword {
			changes = append(changes, addr.WithUser(p.User, p.Password))
		} else {
			changes = append(changes, addr.WithUsername(p.User))
		}
	}
	return addr.Build(changes...).String()
}

// RequestSpec is the immutable description of one HTTP request assembled
// from a curl command.
type RequestSpec struct {
	method        Method
	url           addr.URL
	header        Header
	cookies       []Cookie
	auth          *BasicAuth
	proxy         *Proxy
	body          Body
	verifyTLS     bool
	cookieJarFile string
}

func (s *RequestSpec) Method() Method  { return s.method }
func (s *RequestSpec) URL() addr.URL   { return s.url }
func (s *RequestSpec) Header() Header  { return s.header }
func (s *RequestSpec) Body() Body      { return s.body }
func (s *RequestSpec) VerifyTLS() bool { return s.verifyTLS }

// CookieJarFile is the --cookie-jar argument, passed through untouched.
func (s *RequestSpec) CookieJarFile() string { return s.cookieJarFile }

func (s *RequestSpec) Cookies() []Cookie {
	return append([]Cookie(nil), s.cookies...)
}

func (s *RequestSpec) Auth() (BasicAuth, bool) {
	if s.auth == nil {
		return BasicAuth{}, false
	}
	return *s.auth, true
}

func (s *RequestSpec) Proxy() (Proxy, bool) {
	if s.proxy == nil {
		return Proxy{}, false
	}
	return *s.proxy, true
}

// Proxies maps both "http" and "https" to the proxy URL, or returns nil when
// no proxy was given.
func (s *RequestSpec) Proxies() map[string]string {
	if s.proxy == nil {
		return nil
	}
	u := s.proxy.URL()
	return map[string]string{"http": u, "https": u}
}
