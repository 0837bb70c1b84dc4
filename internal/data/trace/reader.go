package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

const utf8BOM = "\ufeff"

// ReadAll loads the whole trace at path. Any bad row fails the read; no
// partial sequence is returned.
func ReadAll(path string) ([]model.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrTraceNotFound, path)
		}
		return nil, fmt.Errorf("%w: open trace %s: %v", model.ErrIO, path, err)
	}
	defer file.Close()

	util.LogDebugf("Reading trace: %s", path)
	events, err := Decode(file, path)
	if err != nil {
		return nil, err
	}
	util.LogDebugf("Read %d events from %s", len(events), path)
	return events, nil
}

// Decode parses a trace from r. name is only used in error messages.
func Decode(r io.Reader, name string) ([]model.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: read trace %s: %v", model.ErrIO, name, err)
		}
		return nil, &model.TraceError{Path: name, Reason: "missing header"}
	}
	if err := checkHeader(scanner.Text()); err != nil {
		return nil, &model.TraceError{Path: name, Line: 1, Reason: err.Error()}
	}

	events := make([]model.Event, 0, 256)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		ev, err := ParseLine(strings.TrimSuffix(scanner.Text(), "\r"))
		if err != nil {
			return nil, &model.TraceError{Path: name, Line: lineNo, Reason: err.Error()}
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read trace %s: %v", model.ErrIO, name, err)
	}

	return events, nil
}

func checkHeader(line string) error {
	line = strings.TrimSuffix(strings.TrimPrefix(line, utf8BOM), "\r")
	if line != Header {
		return fmt.Errorf("missing header, got %q", line)
	}
	return nil
}
