package exchange

import (
	"time"

	"github.com/nojima/recurl/addr"
	"github.com/nojima/recurl/input"
)

// Overrides replaces parts of the parsed request for one send. Zero fields
// keep the parsed values.
type Overrides struct {
	Method input.Method
	URL    *addr.URL

	// Params are merged into the query string; a name given here replaces
	// every value the URL had for it.
	Params map[string]string

	// Body replaces the payload. Without an explicit Method it also turns
	// the request into a POST.
	Body *input.Body

	Header  map[string]string
	Cookies map[string]string
	Auth    *input.BasicAuth

	Proxy     *input.Proxy
	VerifyTLS *bool
	Timeout   time.Duration
}
