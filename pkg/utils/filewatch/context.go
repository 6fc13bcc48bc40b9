// Package filewatch tells a running server that its configuration file is changed.
package filewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuietPeriod is how long a file should stay still before a change is reported.
const DefaultQuietPeriod = 300 * time.Millisecond

// ChangedError is the cause of the context cancelled by UntilChanged.
type ChangedError struct {
	Path string

	// Ops are the operations observed on Path, merged.
	Ops fsnotify.Op
}

func (e *ChangedError) Error() string {
	return fmt.Sprintf("%s is updated (%s)", e.Path, e.Ops.String())
}

type config struct {
	quiet time.Duration
}

type Option func(*config)

// WithQuietPeriod replaces DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *config) { c.quiet = d }
}

// UntilChanged returns a context cancelled when the file at path is changed.
//
// The directory containing path is watched, not the file itself, so a save done by
// writing a temporary file and renaming it over path is noticed. Other files in the
// directory are ignored, and so are mode changes.
//
// A burst of events (truncate, write, rename...) is reported once, after the file
// has been still for the quiet period. The cause of the context is *ChangedError.
//
// # Returns
//
// - context.Context: cancelled on change, or when ctx is done.
//
// - func(): stops watching.
//
// - error: when watching cannot be started. Then the context and the func are nil.
func UntilChanged(ctx context.Context, path string, options ...Option) (context.Context, func(), error) {
	conf := &config{quiet: DefaultQuietPeriod}
	for _, opt := range options {
		opt(conf)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return nil, nil, err
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()

		var settle <-chan time.Time
		var timer *time.Timer
		changed := &ChangedError{Path: path}
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-cctx.Done():
				return
			case <-settle:
				cancel(changed)
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				op := event.Op &^ fsnotify.Chmod
				if op == 0 {
					continue
				}
				changed.Ops |= op

				if timer == nil {
					timer = time.NewTimer(conf.quiet)
					settle = timer.C
					continue
				}
				timer.Reset(conf.quiet)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("watching %s: %w", path, err))
				return
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
