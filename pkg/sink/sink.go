// Package sink writes record lines to a serial line or a file.
package sink

import (
	"io"
	"os"
	"sync"

	"github.com/womat/debug"
)

// Writer sends each record line followed by a line feed to w.
type Writer struct {
	sync.Mutex
	w io.Writer
	c io.Closer
}

// NewWriter generates a sink writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Open opens the device: stdout, stderr or a file/serial device (e.g. /dev/ttyAMA0).
func Open(device string) (*Writer, error) {
	switch device {
	case "stdout":
		return NewWriter(os.Stdout), nil
	case "stderr":
		return NewWriter(os.Stderr), nil
	}

	f, err := os.OpenFile(device, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{w: f, c: f}, nil
}

// Emit writes the line. There is no acknowledgment, write errors are logged only.
func (s *Writer) Emit(line string) {
	s.Lock()
	defer s.Unlock()

	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		debug.ErrorLog.Printf("can't send record %q: %v", line, err)
	}
}

// Close closes the device, stdout and stderr are kept open.
func (s *Writer) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
