package jarfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	fileHeader    = "# Netscape HTTP Cookie File"
	httpOnlyMark  = "#HttpOnly_"
	fieldsPerLine = 7
)

var reMagic = regexp.MustCompile(`^#( Netscape)? HTTP Cookie File`)

// FormatError is returned when a cookie file cannot be read.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return "invalid cookie file: " + e.Reason
	}
	return fmt.Sprintf("invalid cookie file (line %d): %s", e.Line, e.Reason)
}

// Load reads cookies in Netscape format into j. Expired cookies are loaded
// as well; they are never sent.
func (j *Jar) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	sawHeader := false

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if !sawHeader {
			if !reMagic.MatchString(line) {
				return errors.WithStack(&FormatError{Line: lineNo, Reason: "does not look like a Netscape format cookies file"})
			}
			sawHeader = true
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyMark) {
			httpOnly = true
			line = line[len(httpOnlyMark):]
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "$") {
			continue
		}

		e, err := parseLine(line)
		if err != nil {
			return errors.WithStack(&FormatError{Line: lineNo, Reason: err.Error()})
		}
		e.HTTPOnly = httpOnly
		j.Set(e)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading cookie file")
	}
	if !sawHeader {
		return errors.WithStack(&FormatError{Reason: "file is empty"})
	}
	return nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != fieldsPerLine {
		return Entry{}, errors.Errorf("expected %d tab-separated fields, got %d", fieldsPerLine, len(fields))
	}
	domain, includeSubdomains, path, secure, expires, name, value :=
		fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]

	e := Entry{
		Domain:   domain,
		HostOnly: !strings.EqualFold(includeSubdomains, "TRUE"),
		Path:     path,
		Secure:   strings.EqualFold(secure, "TRUE"),
		Name:     name,
		Value:    value,
	}
	if expires != "" && expires != "0" {
		seconds, err := strconv.ParseInt(expires, 10, 64)
		if err != nil {
			return Entry{}, errors.Errorf("invalid expiry '%s'", expires)
		}
		e.Expires = time.Unix(seconds, 0)
	}
	return e, nil
}

// LoadFile loads the cookies stored in filename.
func (j *Jar) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "opening cookie file '%s'", filename)
	}
	defer f.Close()
	return j.Load(f)
}

// Save writes every cookie in Netscape format, session cookies included
// with an empty expiry.
func (j *Jar) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, fileHeader)
	fmt.Fprintln(bw, "# This file was generated by recurl. Edit at your own risk.")
	fmt.Fprintln(bw)

	for _, e := range j.Entries() {
		domain, includeSubdomains := e.Domain, "FALSE"
		if !e.HostOnly {
			domain, includeSubdomains = "."+e.Domain, "TRUE"
		}
		if e.HTTPOnly {
			domain = httpOnlyMark + domain
		}
		expires := ""
		if !e.Expires.IsZero() {
			expires = strconv.FormatInt(e.Expires.Unix(), 10)
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			domain, includeSubdomains, e.Path, boolField(e.Secure), expires, e.Name, e.Value)
	}
	return errors.Wrap(bw.Flush(), "writing cookie file")
}

func boolField(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// SaveFile writes the jar to filename, replacing it atomically.
func (j *Jar) SaveFile(filename string) error {
	var buf bytes.Buffer
	if err := j.Save(&buf); err != nil {
		return err
	}
	return writeFileAtomic(filename, buf.Bytes(), 0o600)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".recurl-cookies-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temporary cookie file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing cookie file")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing cookie file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing cookie file")
	}
	return errors.Wrapf(os.Rename(tmpPath, path), "saving cookie file '%s'", path)
}
