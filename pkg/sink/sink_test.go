package sink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("device gone") }

func TestWriterEmit(t *testing.T) {
	var b bytes.Buffer
	s := NewWriter(&b)

	s.Emit("2000,23.50,61.20,0.012,-0.003,0.998,1")
	s.Emit("4000,23.50,61.20,NaN,NaN,NaN,1")

	want := "2000,23.50,61.20,0.012,-0.003,0.998,1\n4000,23.50,61.20,NaN,NaN,NaN,1\n"
	if b.String() != want {
		t.Errorf("written %q, want %q", b.String(), want)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWriterEmitErrorIsIgnored(t *testing.T) {
	NewWriter(failingWriter{}).Emit("2000,23.50,61.20,0.012,-0.003,0.998,1")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.csv")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Emit("2000,23.50,61.20,0.012,-0.003,0.998,1")
	if err = s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "2000,23.50,61.20,0.012,-0.003,0.998,1\n" {
		t.Errorf("file content %q", b)
	}
}
