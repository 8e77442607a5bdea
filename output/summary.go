package output

import (
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
)

// PrintPageSummary reports a paginated run, for example
// "42 items from 5 pages (12.3K)".
func PrintPageSummary(w io.Writer, items, pages int, size int64) error {
	_, err := fmt.Fprintf(w, "%d %s from %d %s (%s)\n",
		items, plural(items, "item", "items"),
		pages, plural(pages, "page", "pages"),
		bytefmt.ByteSize(uint64(size)))
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
