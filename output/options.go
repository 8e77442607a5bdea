package output

type Options struct {
	PrintRequestHeader  bool
	PrintRequestBody    bool
	PrintResponseHeader bool
	PrintResponseBody   bool

	EnableFormat bool
	EnableColor  bool

	// OutputFile receives the accumulated pages of a paginated run.
	OutputFile string
	Overwrite  bool
}
