// Package errors annotates errors with the place they passed through.
//
//	err = xe.Wrap(err)
//
// The message of a wrapped error reads like a trace; each hop is separated by " <- ".
package errors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Traced is an error annotated with the function which wrapped it.
type Traced struct {
	Func string
	File string
	Line int
	Note string

	err error
}

func (e *Traced) Error() string {
	where := fmt.Sprintf("@ %s (%s:%d)", e.Func, filepath.Base(e.File), e.Line)
	if e.Note != "" {
		where += " [" + e.Note + "]"
	}
	return where + " <- " + e.err.Error()
}

func (e *Traced) Unwrap() error {
	return e.err
}

// New creates an error with text, annotated with the caller.
func New(text string) error {
	return trace("", errors.New(text), 2)
}

// Wrap annotates err with the caller. Wrap(nil) is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return trace("", err, 2)
}

// WrapWithNote is Wrap with a short free-form note.
func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return trace(note, err, 2)
}

func trace(note string, err error, skip int) error {
	t := &Traced{Func: "(unknown)", File: "?", Line: -1, Note: note, err: err}
	pc, file, line, ok := runtime.Caller(skip)
	if ok {
		t.File, t.Line = file, line
		if fn := runtime.FuncForPC(pc); fn != nil {
			t.Func = fn.Name()
		}
	}
	return t
}
