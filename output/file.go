package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var reIndexSuffix = regexp.MustCompile(`\.(\d+)$`)

// FileWriter writes the result of a run to --output.
type FileWriter struct {
	fullPath string
}

func NewFileWriter(options *Options) *FileWriter {
	fullPath := options.OutputFile
	if !options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}

	return &FileWriter{
		fullPath: fullPath,
	}
}

// makeNonOverlappingFilename appends or bumps a numeric suffix until the
// path does not exist: out.json, out.json.1, out.json.2, ...
func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		newPath := reIndexSuffix.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				// Too long for an int: keep it and append ".1" below.
				return index
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

func (f *FileWriter) Write(data []byte) error {
	if err := os.WriteFile(f.fullPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing '%s'", f.fullPath)
	}
	return nil
}

func (f *FileWriter) Path() string {
	return f.fullPath
}

func (f *FileWriter) Filename() string {
	return filepath.Base(f.fullPath)
}
