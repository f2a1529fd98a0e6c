// Package source splits program source files into the string fragments
// handed to the OpenCL compiler.
package source

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Tokenize reads path and returns its lines in order. Every fragment keeps
// its trailing newline, so concatenating the fragments yields the file.
func Tokenize(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open source file")
	}
	defer f.Close()

	lines, err := Lines(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return lines, nil
}

// Lines splits r into newline-terminated fragments. The last fragment has
// no newline when the input does not end with one.
func Lines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
