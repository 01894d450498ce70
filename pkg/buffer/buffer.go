// Package buffer is the local store of records which couldn't be sent while the device is offline.
//
// The store is a newline delimited text file. Records are appended in capture order and
// drained in the same order. The size of the file is limited by a (soft) byte cap:
// if the file already exceeds the cap when a record is appended, the file is truncated and
// the new record is its only content. All previously buffered records are lost in this case.
package buffer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"edgelog/pkg/record"

	"github.com/womat/debug"
)

var (
	ErrStorageOpen   = errors.New("can't open buffer file")
	ErrStorageDelete = errors.New("can't remove buffer file")
)

// Buffer is the handler of the buffer file.
// Append and DrainAndClear must be called from one goroutine, the buffer is owned by the control loop.
type Buffer struct {
	// path is the location of the buffer file.
	path string
	// maxBytes is the soft limit of the file size.
	maxBytes int64
	// overflows counts the truncations because of an exceeded file size.
	overflows atomic.Int64
}

// DrainResult summarizes a drain.
type DrainResult struct {
	// Emitted is the number of records sent to the sink.
	Emitted int
	// Malformed is the number of skipped lines which aren't valid records.
	Malformed int
}

// New initials a new buffer handler, the file is created with the first Append.
func New(path string, maxBytes int64) *Buffer {
	return &Buffer{path: path, maxBytes: maxBytes}
}

// Path returns the location of the buffer file.
func (b *Buffer) Path() string {
	return b.path
}

// Overflows returns the number of truncations because of an exceeded file size.
func (b *Buffer) Overflows() int {
	return int(b.overflows.Load())
}

// Size returns the current size of the buffer file, a missing file has size 0.
func (b *Buffer) Size() (int64, error) {
	fi, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return fi.Size(), nil
}

// Append adds a record line to the buffer file, the file is created if it doesn't exist.
// If the size of the file before this append exceeds the limit, the file is truncated first.
func (b *Buffer) Append(line string) (err error) {
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrStorageOpen, b.path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("closing buffer file %q: %w", b.path, e)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrStorageOpen, b.path, err)
	}

	if fi.Size() > b.maxBytes {
		// files opened with O_APPEND write at the end, after truncating it's the start of the file
		if err = f.Truncate(0); err != nil {
			return fmt.Errorf("truncating buffer file %q: %w", b.path, err)
		}

		b.overflows.Add(1)
		debug.WarningLog.Printf("buffer file %q exceeds %d bytes (%d bytes), buffered records are discarded",
			b.path, b.maxBytes, fi.Size())
	}

	if _, err = f.WriteString(strings.TrimSpace(line) + "\n"); err != nil {
		return fmt.Errorf("writing buffer file %q: %w", b.path, err)
	}

	return nil
}

// DrainAndClear sends all buffered records in file order to emit and removes the buffer file afterwards.
// Blank lines are ignored, malformed lines are skipped.
// If the buffer file doesn't exist, nothing is sent.
//
// If the file can't be removed, ErrStorageDelete is returned, the records are sent again with the next drain.
func (b *Buffer) DrainAndClear(emit func(line string)) (DrainResult, error) {
	var res DrainResult

	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("%w %q: %v", ErrStorageOpen, b.path, err)
	}

	debug.InfoLog.Printf("synchronizing buffer file %q started", b.path)

	r := bufio.NewReader(f)
	var readErr error
	for readErr == nil {
		var line string
		line, readErr = r.ReadString('\n')

		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		if _, err = record.Decode(line); err != nil {
			res.Malformed++
			debug.ErrorLog.Printf("skip buffered line %q: %v", line, err)
			continue
		}

		emit(line)
		res.Emitted++
	}
	_ = f.Close()

	if !errors.Is(readErr, io.EOF) {
		// the file is kept, the records are sent again with the next drain
		return res, fmt.Errorf("reading buffer file %q: %w", b.path, readErr)
	}

	debug.InfoLog.Printf("synchronizing buffer file %q finished: %d records sent, %d lines skipped",
		b.path, res.Emitted, res.Malformed)

	if err = os.Remove(b.path); err != nil {
		return res, fmt.Errorf("%w %q: %v", ErrStorageDelete, b.path, err)
	}

	return res, nil
}
