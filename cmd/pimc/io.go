package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// readInput reads a whole file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, errors.New("no input file")
	case "-":
		return io.ReadAll(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return data, nil
}

// withOutput calls write on the output file, or on stdout for an empty path.
func withOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	return writeFile(path, write)
}

// writeFile creates path and calls write on it. A failed close is reported
// like a failed write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
