package exchange

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	ForceHTTP1      bool

	// UserAgent is sent when the command sets no User-Agent header.
	// Empty means recurl/<version>.
	UserAgent string

	// Transport replaces the default transport. Tests point it at an
	// httptest server.
	Transport http.RoundTripper

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}
