// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package logging provides log sinks and line formats for ECN simulator events.
package logging

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

const bufferSize = 4096

// GetLogFile opens the named event log. An empty name discards all output,
// "stdout" writes to standard output, anything else creates a file.
func GetLogFile(file string) (io.WriteCloser, error) {
	if len(file) == 0 {
		return nopCloser{io.Discard}, nil
	}
	if file == "stdout" {
		return nopCloser{os.Stdout}, nil
	}
	fd, err := os.Create(filepath.Clean(file))
	if err != nil {
		return nil, err
	}

	return &fileCloser{
		f:   fd,
		buf: bufio.NewWriterSize(fd, bufferSize),
	}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type fileCloser struct {
	f   *os.File
	buf *bufio.Writer
}

func (f *fileCloser) Write(buf []byte) (int, error) {
	return f.buf.Write(buf)
}

func (f *fileCloser) Close() error {
	if err := f.buf.Flush(); err != nil {
		_ = f.f.Close()

		return err
	}

	return f.f.Close()
}
