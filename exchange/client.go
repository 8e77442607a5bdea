package exchange

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// ClientConfig is the part of the client setup that varies per request.
type ClientConfig struct {
	SkipVerify bool
	Proxy      string
	Timeout    time.Duration
	Jar        http.CookieJar
}

func BuildHTTPClient(options *Options, config ClientConfig) (*http.Client, error) {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		// Do not follow redirects
		return http.ErrUseLastResponse
	}
	if options.FollowRedirects {
		checkRedirect = nil
	}

	client := http.Client{
		CheckRedirect: checkRedirect,
		Timeout:       config.Timeout,
		Jar:           config.Jar,
	}

	var transp http.RoundTripper
	if options.Transport == nil {
		transp = http.DefaultTransport.(*http.Transport).Clone()
	} else if httpTransport, ok := options.Transport.(*http.Transport); ok {
		transp = httpTransport.Clone()
	} else {
		transp = options.Transport
	}
	if httpTransport, ok := transp.(*http.Transport); ok {
		if httpTransport.TLSClientConfig == nil {
			httpTransport.TLSClientConfig = &tls.Config{}
		}
		httpTransport.TLSClientConfig.InsecureSkipVerify = config.SkipVerify
		if options.ForceHTTP1 {
			httpTransport.TLSClientConfig.NextProtos = []string{"http/1.1", "http/1.0"}
			httpTransport.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
		}
		if config.Proxy != "" {
			proxyURL, err := url.Parse(config.Proxy)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing proxy URL")
			}
			httpTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	client.Transport = transp

	return &client, nil
}
