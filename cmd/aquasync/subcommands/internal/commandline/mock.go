// Package commandline has a flarc.Commandline for tests of subcommands.
package commandline

import (
	"io"
	"strings"

	"github.com/youta-t/flarc"
)

type MockCommandline[T any] struct {
	Fullname_ string

	Stdin_  io.Reader
	Stdout_ io.Writer
	Stderr_ io.Writer

	Flags_ T
	Args_  map[string][]string
}

var _ flarc.Commandline[struct{}] = &MockCommandline[struct{}]{}

// New returns a commandline with flags, writing stdout into the returned builder.
func New[T any](fullname string, flags T) (MockCommandline[T], *strings.Builder) {
	stdout := new(strings.Builder)
	return MockCommandline[T]{
		Fullname_: fullname,
		Stdin_:    strings.NewReader(""),
		Stdout_:   stdout,
		Stderr_:   io.Discard,
		Flags_:    flags,
		Args_:     map[string][]string{},
	}, stdout
}

func (t MockCommandline[T]) Fullname() string          { return t.Fullname_ }
func (t MockCommandline[T]) Stdin() io.Reader          { return t.Stdin_ }
func (t MockCommandline[T]) Stdout() io.Writer         { return t.Stdout_ }
func (t MockCommandline[T]) Stderr() io.Writer         { return t.Stderr_ }
func (t MockCommandline[T]) Flags() T                  { return t.Flags_ }
func (t MockCommandline[T]) Args() map[string][]string { return t.Args_ }
