package exchange

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nojima/recurl/input"
	"github.com/nojima/recurl/jarfile"
	"github.com/pkg/errors"
)

// Session sends a parsed request, any number of times, sharing one cookie
// jar across sends. It is safe for concurrent use.
type Session struct {
	spec    *input.RequestSpec
	options Options
	jar     *jarfile.Jar
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[clientKey]*http.Client
}

type clientKey struct {
	skipVerify bool
	proxy      string
	timeout    time.Duration
}

// Exchange is a completed round trip with the response body read.
type Exchange struct {
	Request  *http.Request
	Response *http.Response
	Body     []byte
}

// NewSession prepares a session for spec. The cookie jar file named by the
// command is loaded when it exists, then the command's own cookies are
// added on top of it.
func NewSession(spec *input.RequestSpec, options *Options) (*Session, error) {
	s := &Session{
		spec:    spec,
		jar:     jarfile.New(),
		logger:  options.logger(),
		clients: map[clientKey]*http.Client{},
	}
	if options != nil {
		s.options = *options
	}

	if name := spec.CookieJarFile(); name != "" {
		_, err := os.Stat(name)
		switch {
		case err == nil:
			if err := s.jar.LoadFile(name); err != nil {
				return nil, err
			}
			s.logger.Debug("loaded cookie jar", "file", name, "cookies", s.jar.Len())
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "checking cookie file '%s'", name)
		}
	}

	for _, c := range spec.Cookies() {
		s.jar.Set(jarfile.Entry{
			Domain:   c.Domain,
			HostOnly: true,
			Path:     c.Path,
			Name:     c.Name,
			Value:    c.Value,
		})
	}
	return s, nil
}

func (s *Session) Spec() *input.RequestSpec {
	return s.spec
}

func (s *Session) Jar() *jarfile.Jar {
	return s.jar
}

func (s *Session) client(ov *Overrides) (*http.Client, error) {
	key := clientKey{
		skipVerify: !s.spec.VerifyTLS(),
		proxy:      s.spec.Proxies()["https"],
		timeout:    s.options.Timeout,
	}
	if ov.VerifyTLS != nil {
		key.skipVerify = !*ov.VerifyTLS
	}
	if ov.Proxy != nil {
		key.proxy = ov.Proxy.URL()
	}
	if ov.Timeout > 0 {
		key.timeout = ov.Timeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[key]; ok {
		return client, nil
	}
	client, err := BuildHTTPClient(&s.options, ClientConfig{
		SkipVerify: key.skipVerify,
		Proxy:      key.proxy,
		Timeout:    key.timeout,
		Jar:        s.jar,
	})
	if err != nil {
		return nil, err
	}
	s.clients[key] = client
	return client, nil
}

// Send sends the request with ov applied (nil for none). The caller must
// close the response body.
func (s *Session) Send(ctx context.Context, ov *Overrides) (*http.Response, error) {
	_, resp, err := s.send(ctx, ov)
	return resp, err
}

func (s *Session) send(ctx context.Context, ov *Overrides) (*http.Request, *http.Response, error) {
	if ov == nil {
		ov = &Overrides{}
	}
	client, err := s.client(ov)
	if err != nil {
		return nil, nil, err
	}
	r, err := BuildHTTPRequest(ctx, s.spec, ov, s.options.UserAgent)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("sending request", "method", r.Method, "url", r.URL.String())
	resp, err := client.Do(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sending HTTP request")
	}
	s.logger.Debug("received response", "status", resp.StatusCode, "proto", resp.Proto)
	return r, resp, nil
}

// Execute is Send followed by reading and closing the response body.
func (s *Session) Execute(ctx context.Context, ov *Overrides) (*Exchange, error) {
	r, resp, err := s.send(ctx, ov)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return &Exchange{Request: r, Response: resp, Body: body}, nil
}

// SaveCookies writes the jar in Netscape format to filename, or to the
// command's --cookie-jar file when filename is empty. It returns the file
// written.
func (s *Session) SaveCookies(filename string) (string, error) {
	if filename == "" {
		filename = s.spec.CookieJarFile()
	}
	if filename == "" {
		return "", errors.New("no cookie jar file given")
	}
	if err := s.jar.SaveFile(filename); err != nil {
		return "", err
	}
	s.logger.Debug("saved cookie jar", "file", filename, "cookies", s.jar.Len())
	return filename, nil
}
