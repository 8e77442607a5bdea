package main

import (
	"fmt"
	"os"

	"github.com/nojima/recurl"
)

func main() {
	if err := recurl.Main(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
