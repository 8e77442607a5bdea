package input

import (
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// normalizeContinuations joins physical lines that end with a backslash so a
// multi-line command becomes one logical line.
func normalizeContinuations(command string) string {
	command = strings.ReplaceAll(command, "\r\n", "\n")
	return strings.ReplaceAll(command, "\\\n", "")
}

// tokenize splits a command into words the way a POSIX shell would: single
// quotes are literal, double quotes honor backslash escapes and an unquoted
// backslash escapes the next character. $'...' spans are decoded first.
func tokenize(command string) ([]string, error) {
	command, err := expandANSIQuotes(normalizeContinuations(command))
	if err != nil {
		return nil, err
	}
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, newParseError("command", "", err)
	}
	return words, nil
}

func quotingError(reason string) error {
	return newParseError("command", "", errors.New(reason))
}

// expandANSIQuotes rewrites every unquoted $'...' span as a single-quoted
// word holding its decoded text. shellquote has no ANSI-C quoting, and
// "Copy as cURL" in browsers emits it for bodies with control characters.
func expandANSIQuotes(command string) (string, error) {
	if !strings.Contains(command, "$'") {
		return command, nil
	}

	rs := []rune(command)
	var b strings.Builder
	var quote rune
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quote == 0 && r == '$' && i+1 < len(rs) && rs[i+1] == '\'':
			text, end, err := decodeANSIQuoted(rs, i+2)
			if err != nil {
				return "", err
			}
			b.WriteString(singleQuote(text))
			i = end
			continue
		case r == '\\' && quote != '\'':
			b.WriteRune(r)
			if i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			}
			continue
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// decodeANSIQuoted decodes a $'...' span starting after the opening quote and
// returns the text and the index of the closing quote.
func decodeANSIQuoted(rs []rune, i int) (string, int, error) {
	var b strings.Builder
	for ; i < len(rs); i++ {
		r := rs[i]
		if r == '\'' {
			return b.String(), i, nil
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i >= len(rs) {
			break
		}
		switch e := rs[i]; e {
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		case 'a':
			b.WriteRune('\a')
		case 'b':
			b.WriteRune('\b')
		case 'f':
			b.WriteRune('\f')
		case 'v':
			b.WriteRune('\v')
		case 'e', 'E':
			b.WriteRune(0x1b)
		case 'x', 'u':
			width := 2
			if e == 'u' {
				width = 4
			}
			if i+width >= len(rs) {
				return "", i, quotingError("invalid hex escape")
			}
			n, err := strconv.ParseUint(string(rs[i+1:i+1+width]), 16, 32)
			if err != nil {
				return "", i, quotingError("invalid hex escape")
			}
			b.WriteRune(rune(n))
			i += width
		default:
			b.WriteRune(e)
		}
	}
	return "", i, quotingError("unterminated $' quote")
}
