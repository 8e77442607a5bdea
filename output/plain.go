package output

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

type PlainPrinter struct {
	writer io.Writer
}

func NewPlainPrinter(writer io.Writer) Printer {
	return &PlainPrinter{
		writer: writer,
	}
}

func (p *PlainPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	_, err := fmt.Fprintf(p.writer, "%s %s\n", proto, status)
	return errors.Wrap(err, "printing status line")
}

func (p *PlainPrinter) PrintRequestLine(request *http.Request) error {
	_, err := fmt.Fprintf(p.writer, "%s %s %s\n", request.Method, request.URL, request.Proto)
	return errors.Wrap(err, "printing request line")
}

func (p *PlainPrinter) PrintHeader(header http.Header) error {
	for _, name := range sortedNames(header) {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s: %s\n", name, value)
		}
	}
	_, err := fmt.Fprintln(p.writer)
	return errors.Wrap(err, "printing header")
}

func (p *PlainPrinter) PrintBody(body io.Reader, contentType string) error {
	_, err := io.Copy(p.writer, body)
	if err != nil {
		return errors.Wrap(err, "printing body")
	}
	return nil
}

func sortedNames(header http.Header) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
