package script

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"dispatchd/internal/common/fsutil"
	"dispatchd/pkg/types"
)

// Ext is the file extension of event scripts.
const Ext = ".ndjson"

// maxLine bounds a single script line.
const maxLine = 1 << 20

// ParseError locates a bad line in a script.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// LoadFile parses one script.
func LoadFile(path string) ([]types.Event, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []types.Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev types.Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, &ParseError{File: p, Line: line, Err: err}
		}
		if ev.Channel == "" {
			return nil, &ParseError{File: p, Line: line, Err: fmt.Errorf("channel is required")}
		}
		if ev.Name == "" {
			return nil, &ParseError{File: p, Line: line, Err: fmt.Errorf("name is required")}
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{File: p, Line: line + 1, Err: err}
	}
	return events, nil
}

// LoadDir parses every *.ndjson file in dir, in file name order.
func LoadDir(dir string) ([]types.Event, error) {
	files, err := fsutil.ListByExt(dir, Ext)
	if err != nil {
		return nil, err
	}
	var events []types.Event
	for _, f := range files {
		evs, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

// Load parses each path as a file or, when it is a directory, as LoadDir.
func Load(paths ...string) ([]types.Event, error) {
	var events []types.Event
	for _, p := range paths {
		exp, err := fsutil.ExpandHome(p)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(exp)
		if err != nil {
			return nil, err
		}
		var evs []types.Event
		if st.IsDir() {
			evs, err = LoadDir(exp)
		} else {
			evs, err = LoadFile(exp)
		}
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}
