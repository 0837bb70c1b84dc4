package trace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// Follow tails a trace that another process is writing and calls fn for
// every complete row. It returns when ctx is done, when the file is removed
// or renamed, when fn fails, or on a malformed row. A truncation restarts
// from the header, which is what a new recording over the same path does.
func Follow(ctx context.Context, path string, fn func(model.Event) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	f := &follower{path: path, fn: fn}
	if err := f.readNew(); err != nil {
		return err
	}

	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				util.LogInfof("Followed trace went away: %s", path)
				return nil
			}
			if event.Has(fsnotify.Create) {
				f.reset()
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := f.readNew(); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.LogError("Trace watcher error: " + err.Error())
		}
	}
}

type follower struct {
	path       string
	fn         func(model.Event) error
	offset     int64
	partial    []byte
	headerSeen bool
	lineNo     int
	// prefix holds the first bytes read from offset zero; a rewrite of the
	// file shows up as a mismatch even when it grew past offset.
	prefix []byte
	info   os.FileInfo
}

// prefixLen covers the header and the start of the first row, where two
// recordings differ.
const prefixLen = 64

func (f *follower) reset() {
	f.offset = 0
	f.partial = nil
	f.headerSeen = false
	f.lineNo = 0
	f.prefix = nil
	f.info = nil
}

// rewritten reports whether file is no longer the content read so far.
func (f *follower) rewritten(file *os.File, info os.FileInfo) bool {
	if f.offset == 0 {
		return false
	}
	if info.Size() < f.offset {
		return true
	}
	if f.info != nil && !os.SameFile(f.info, info) {
		return true
	}
	head := make([]byte, len(f.prefix))
	if _, err := file.ReadAt(head, 0); err != nil {
		return true
	}
	return !bytes.Equal(head, f.prefix)
}

func (f *follower) readNew() error {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: open trace %s: %v", model.ErrIO, f.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat trace %s: %v", model.ErrIO, f.path, err)
	}
	if f.rewritten(file, info) {
		util.LogDebugf("Trace rewritten, restarting: %s", f.path)
		f.reset()
	}
	f.info = info

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek trace %s: %v", model.ErrIO, f.path, err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("%w: read trace %s: %v", model.ErrIO, f.path, err)
	}
	if missing := prefixLen - len(f.prefix); missing > 0 && int64(len(f.prefix)) == f.offset {
		f.prefix = append(f.prefix, data[:min(missing, len(data))]...)
	}
	f.offset += int64(len(data))
	f.partial = append(f.partial, data...)

	for {
		idx := bytes.IndexByte(f.partial, '\n')
		if idx < 0 {
			return nil
		}
		line := string(bytes.TrimSuffix(f.partial[:idx], []byte("\r")))
		f.partial = f.partial[idx+1:]
		f.lineNo++

		if !f.headerSeen {
			if err := checkHeader(line); err != nil {
				return &model.TraceError{Path: f.path, Line: f.lineNo, Reason: err.Error()}
			}
			f.headerSeen = true
			continue
		}

		ev, err := ParseLine(line)
		if err != nil {
			return &model.TraceError{Path: f.path, Line: f.lineNo, Reason: err.Error()}
		}
		if err := f.fn(ev); err != nil {
			return err
		}
	}
}
