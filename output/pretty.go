package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

const indentUnit = "    "

type PrettyPrinter struct {
	writer        io.Writer
	plain         Printer
	aurora        aurora.Aurora
	headerPalette *HeaderPalette
	jsonPalette   *JSONPalette
}

type PrettyPrinterConfig struct {
	Writer      io.Writer
	EnableColor bool
}

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Proto          aurora.Color
	Status         aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.GreenFg | aurora.BoldFm,
	URL:            aurora.CyanFg | aurora.UnderlineFm,
	Proto:          aurora.BlueFg,
	Status:         aurora.BrownFg | aurora.BoldFm,
	FieldName:      aurora.WhiteFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.WhiteFg,
}

type JSONPalette struct {
	Name    aurora.Color
	String  aurora.Color
	Number  aurora.Color
	Boolean aurora.Color
	Null    aurora.Color
	Symbol  aurora.Color
}

var defaultJSONPalette = JSONPalette{
	Name:    aurora.BlueFg,
	String:  aurora.BrownFg,
	Number:  aurora.CyanFg,
	Boolean: aurora.MagentaFg,
	Null:    aurora.RedFg,
	Symbol:  aurora.WhiteFg,
}

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		plain:         NewPlainPrinter(config.Writer),
		aurora:        aurora.NewAurora(config.EnableColor),
		headerPalette: &defaultHeaderPalette,
		jsonPalette:   &defaultJSONPalette,
	}
}

func (p *PrettyPrinter) PrintStatusLine(proto string, status string, statusCode int) error {
	_, err := fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(proto, p.headerPalette.Proto),
		p.aurora.Colorize(status, p.headerPalette.Status))
	return errors.Wrap(err, "printing status line")
}

func (p *PrettyPrinter) PrintRequestLine(request *http.Request) error {
	_, err := fmt.Fprintf(p.writer, "%s %s %s\n",
		p.aurora.Colorize(request.Method, p.headerPalette.Method),
		p.aurora.Colorize(request.URL.String(), p.headerPalette.URL),
		p.aurora.Colorize(request.Proto, p.headerPalette.Proto))
	return errors.Wrap(err, "printing request line")
}

func (p *PrettyPrinter) PrintHeader(header http.Header) error {
	for _, name := range sortedNames(header) {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s%s %s\n",
				p.aurora.Colorize(name, p.headerPalette.FieldName),
				p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
				p.aurora.Colorize(value, p.headerPalette.FieldValue))
		}
	}
	_, err := fmt.Fprintln(p.writer)
	return errors.Wrap(err, "printing header")
}

func isJSON(contentType string) bool {
	contentType = strings.TrimSpace(contentType)

	semicolon := strings.Index(contentType, ";")
	if semicolon != -1 {
		contentType = contentType[:semicolon]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}

// PrintBody indents and colors a JSON body, keeping the key order of the
// document. Anything that is not a single valid JSON value is printed as is.
func (p *PrettyPrinter) PrintBody(body io.Reader, contentType string) error {
	if !isJSON(contentType) {
		return p.plain.PrintBody(body, contentType)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "reading body")
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return p.plain.PrintBody(bytes.NewReader(data), contentType)
	}

	var buf bytes.Buffer
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := p.printJSONValue(&buf, decoder, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err = p.writer.Write(buf.Bytes())
	return errors.Wrap(err, "printing body")
}

func (p *PrettyPrinter) printJSONValue(w *bytes.Buffer, decoder *json.Decoder, depth int) error {
	token, err := decoder.Token()
	if err != nil {
		return errors.Wrap(err, "parsing JSON")
	}

	switch v := token.(type) {
	case json.Delim:
		switch v {
		case '{':
			return p.printJSONObject(w, decoder, depth)
		case '[':
			return p.printJSONArray(w, decoder, depth)
		default:
			return errors.Errorf("unexpected delimiter: %v", v)
		}
	case string:
		w.WriteString(p.aurora.Colorize(quoteJSON(v), p.jsonPalette.String).String())
	case json.Number:
		w.WriteString(p.aurora.Colorize(v.String(), p.jsonPalette.Number).String())
	case bool:
		w.WriteString(p.aurora.Colorize(fmt.Sprint(v), p.jsonPalette.Boolean).String())
	case nil:
		w.WriteString(p.aurora.Colorize("null", p.jsonPalette.Null).String())
	default:
		return errors.Errorf("unexpected JSON token: %v", token)
	}
	return nil
}

func (p *PrettyPrinter) printJSONObject(w *bytes.Buffer, decoder *json.Decoder, depth int) error {
	if !decoder.More() {
		w.WriteString(p.symbol("{}"))
		_, err := decoder.Token()
		return errors.Wrap(err, "parsing JSON")
	}

	w.WriteString(p.symbol("{"))
	w.WriteByte('\n')
	for first := true; decoder.More(); first = false {
		if !first {
			w.WriteString(p.symbol(","))
			w.WriteByte('\n')
		}
		token, err := decoder.Token()
		if err != nil {
			return errors.Wrap(err, "parsing JSON")
		}
		name, ok := token.(string)
		if !ok {
			return errors.Errorf("unexpected object key: %v", token)
		}
		w.WriteString(strings.Repeat(indentUnit, depth+1))
		w.WriteString(p.aurora.Colorize(quoteJSON(name), p.jsonPalette.Name).String())
		w.WriteString(p.symbol(":"))
		w.WriteByte(' ')
		if err := p.printJSONValue(w, decoder, depth+1); err != nil {
			return err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return errors.Wrap(err, "parsing JSON")
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat(indentUnit, depth))
	w.WriteString(p.symbol("}"))
	return nil
}

func (p *PrettyPrinter) printJSONArray(w *bytes.Buffer, decoder *json.Decoder, depth int) error {
	if !decoder.More() {
		w.WriteString(p.symbol("[]"))
		_, err := decoder.Token()
		return errors.Wrap(err, "parsing JSON")
	}

	w.WriteString(p.symbol("["))
	w.WriteByte('\n')
	for first := true; decoder.More(); first = false {
		if !first {
			w.WriteString(p.symbol(","))
			w.WriteByte('\n')
		}
		w.WriteString(strings.Repeat(indentUnit, depth+1))
		if err := p.printJSONValue(w, decoder, depth+1); err != nil {
			return err
		}
	}
	if _, err := decoder.Token(); err != nil {
		return errors.Wrap(err, "parsing JSON")
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat(indentUnit, depth))
	w.WriteString(p.symbol("]"))
	return nil
}

func (p *PrettyPrinter) symbol(s string) string {
	return p.aurora.Colorize(s, p.jsonPalette.Symbol).String()
}

// quoteJSON quotes s as a JSON string, leaving non-ASCII and HTML
// characters unescaped.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
