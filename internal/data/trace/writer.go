package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// Writer appends events to a freshly truncated trace file.
type Writer struct {
	path  string
	mu    sync.Mutex
	file  *os.File
	buf   *bufio.Writer
	count int
}

// Create truncates or creates path, writes the header and returns a writer.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create trace directory %s: %v", model.ErrIO, dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: create trace %s: %v", model.ErrIO, path, err)
	}

	w := &Writer{
		path: path,
		file: file,
		buf:  bufio.NewWriter(file),
	}
	if _, err := w.buf.WriteString(Header + "\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: write trace header: %v", model.ErrIO, err)
	}
	return w, nil
}

// Path returns the destination file.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one row. Each call emits a complete line.
func (w *Writer) Append(ev model.Event) error {
	line := FormatEvent(ev)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("%w: append to closed trace %s", model.ErrIO, w.path)
	}
	if _, err := w.buf.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: write trace row: %v", model.ErrIO, err)
	}
	w.count++
	return nil
}

// Count returns how many rows were appended.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Flush pushes buffered rows to the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("%w: flush trace: %v", model.ErrIO, err)
	}
	return nil
}

// Close flushes and releases the file. Calling Close twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil

	if flushErr != nil {
		return fmt.Errorf("%w: flush trace: %v", model.ErrIO, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close trace: %v", model.ErrIO, closeErr)
	}
	return nil
}
