// Package input turns a curl command line into a RequestSpec.
//
// Parse is a pure function: it performs no I/O and keeps no state between
// calls, so it can be used from multiple goroutines.
package input

import (
	"io"
	"log/slog"
)

type Options struct {
	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger

	// PromptPassword, when set, is asked for the password of a -u value
	// that has no ':' instead of failing with AuthFormatError.
	PromptPassword func(user string) (string, error)
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Parse parses a curl command, possibly spanning several lines joined with
// backslash continuations, into a RequestSpec. options may be nil.
func Parse(command string, options *Options) (*RequestSpec, error) {
	logger := options.logger()

	tokens, err := tokenize(command)
	if err != nil {
		return nil, err
	}
	logger.Debug("tokenized command", "tokens", len(tokens))

	fv, err := parseFlags(tokens)
	if err != nil {
		return nil, err
	}

	a := &assembler{fv: fv, options: options, logger: logger}
	return a.assemble()
}
