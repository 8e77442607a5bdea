package exchange

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/nojima/recurl/addr"
	"github.com/pkg/errors"
)

type PageOptions struct {
	// Param is the query parameter carrying the page number.
	Param   string
	Start   int
	PerPage int

	// MaxPages stops after that many pages. Zero means no limit.
	MaxPages int
}

// Pages is the result of AccumulatePages.
type Pages struct {
	Items []json.RawMessage
	Pages int
	Bytes int64
}

// AccumulatePages requests page Start, Start+1, ... of a JSON array
// endpoint and concatenates the elements. It stops at the first page whose
// length differs from PerPage.
func (s *Session) AccumulatePages(ctx context.Context, options PageOptions) (*Pages, error) {
	if options.Param == "" {
		return nil, errors.New("page parameter name is empty")
	}
	if options.PerPage <= 0 {
		return nil, errors.Errorf("items per page must be positive: %d", options.PerPage)
	}

	result := &Pages{Items: []json.RawMessage{}}
	base := s.spec.URL()
	for page := options.Start; options.MaxPages <= 0 || result.Pages < options.MaxPages; page++ {
		u := base.Update(addr.WithQuery(map[string]string{options.Param: strconv.Itoa(page)}))
		ex, err := s.Execute(ctx, &Overrides{URL: &u})
		if err != nil {
			return nil, err
		}
		if err := RaiseForStatus(ex.Response); err != nil {
			return nil, err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(ex.Body, &items); err != nil {
			return nil, errors.Wrapf(err, "page %d is not a JSON array", page)
		}
		result.Items = append(result.Items, items...)
		result.Pages++
		result.Bytes += int64(len(ex.Body))
		s.logger.Debug("fetched page", "page", page, "items", len(items))

		if len(items) != options.PerPage {
			break
		}
	}
	return result, nil
}
