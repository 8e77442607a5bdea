package exchange

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusError reports a 4xx or 5xx response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	kind := "server error"
	if e.StatusCode < 500 {
		kind = "client error"
	}
	return fmt.Sprintf("%s: %s for url: %s", kind, e.Status, e.URL)
}

// RaiseForStatus returns a StatusError when resp carries a 4xx or 5xx
// status, and nil otherwise.
func RaiseForStatus(resp *http.Response) error {
	if resp.StatusCode < 400 || resp.StatusCode >= 600 {
		return nil
	}
	u := ""
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.String()
	}
	return errors.WithStack(&StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: u})
}
