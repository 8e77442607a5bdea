package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/nojima/recurl/addr"
	"github.com/nojima/recurl/input"
	"github.com/nojima/recurl/version"
	"github.com/pkg/errors"
)

const defaultContentType = "application/x-www-form-urlencoded"

func defaultUserAgent() string {
	return fmt.Sprintf("recurl/%s", version.Current())
}

// BuildHTTPRequest turns spec, with ov applied, into an *http.Request.
// Cookies parsed from the command are not added here; the session jar sends them.
func BuildHTTPRequest(ctx context.Context, spec *input.RequestSpec, ov *Overrides, userAgent string) (*http.Request, error) {
	if ov == nil {
		ov = &Overrides{}
	}

	u := buildURL(spec, ov)
	auth, hasAuth := spec.Auth()
	if ov.Auth != nil {
		auth, hasAuth = *ov.Auth, true
	}

	body := spec.Body()
	method := spec.Method()
	if ov.Body != nil {
		body = *ov.Body
		method = input.MethodPost
	}
	if ov.Method != "" {
		method = ov.Method
	}

	header := buildHTTPHeader(spec, ov)
	if header.Get("Content-Type") == "" && !body.IsEmpty() {
		header.Set("Content-Type", defaultContentType)
	}
	if header.Get("User-Agent") == "" {
		if userAgent == "" {
			userAgent = defaultUserAgent()
		}
		header.Set("User-Agent", userAgent)
	}

	var reader io.Reader
	if !body.IsEmpty() {
		reader = bytes.NewReader(body.Bytes())
	}
	r, err := http.NewRequestWithContext(ctx, string(method), u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "building HTTP request")
	}
	r.Header = header
	r.Host = header.Get("Host")
	if hasAuth {
		r.SetBasicAuth(auth.User, auth.Password)
	}

	names := make([]string, 0, len(ov.Cookies))
	for name := range ov.Cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.AddCookie(&http.Cookie{Name: name, Value: ov.Cookies[name]})
	}
	return r, nil
}

// buildURL applies the URL and query overrides and drops the userinfo,
// which travels as an Authorization header instead.
func buildURL(spec *input.RequestSpec, ov *Overrides) addr.URL {
	u := spec.URL()
	if ov.URL != nil {
		u = *ov.URL
	}
	changes := []addr.Change{addr.WithoutUser()}
	if len(ov.Params) > 0 {
		changes = append(changes, addr.WithQuery(ov.Params))
	}
	return u.Update(changes...)
}

func buildHTTPHeader(spec *input.RequestSpec, ov *Overrides) http.Header {
	header := spec.Header().HTTPHeader()
	for name, value := range ov.Header {
		header.Set(name, value)
	}
	return header
}
