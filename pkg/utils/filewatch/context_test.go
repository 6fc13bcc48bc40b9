package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/filewatch"
)

const quiet = 100 * time.Millisecond

func writeConfig(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func awaitChange(t *testing.T, ctx context.Context) *filewatch.ChangedError {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context is not cancelled")
	}
	changed := new(filewatch.ChangedError)
	if !errors.As(context.Cause(ctx), &changed) {
		t.Fatalf("unexpected cause: %v", context.Cause(ctx))
	}
	return changed
}

func assertStill(t *testing.T, ctx context.Context, d time.Duration) {
	t.Helper()
	select {
	case <-ctx.Done():
		t.Fatalf("context is cancelled: %v", context.Cause(ctx))
	case <-time.After(d):
	}
}

func TestUntilChanged(t *testing.T) {
	t.Run("when the config file is written, it cancels context", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config, filewatch.WithQuietPeriod(quiet))
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		writeConfig(t, config, "port: 8081\n")

		changed := awaitChange(t, ctx)
		if changed.Path != config {
			t.Errorf("path: %s", changed.Path)
		}
		if !changed.Ops.Has(fsnotify.Write) {
			t.Errorf("ops: %s", changed.Ops)
		}
	})

	t.Run("when the config file is replaced by rename, it cancels context", func(t *testing.T) {
		dir := t.TempDir()
		config := filepath.Join(dir, "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config, filewatch.WithQuietPeriod(quiet))
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		tmp := filepath.Join(dir, ".aquafarmd.yaml.swp")
		writeConfig(t, tmp, "port: 8081\n")
		if err := os.Rename(tmp, config); err != nil {
			t.Fatal(err)
		}

		awaitChange(t, ctx)
	})

	t.Run("a burst of writes is reported once the file is still", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config, filewatch.WithQuietPeriod(4*quiet))
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		for i := 0; i < 5; i++ {
			writeConfig(t, config, "port: 808"+string(rune('1'+i))+"\n")
			assertStill(t, ctx, quiet/2)
		}

		awaitChange(t, ctx)
	})

	t.Run("other files and mode changes do not cancel context", func(t *testing.T) {
		dir := t.TempDir()
		config := filepath.Join(dir, "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config, filewatch.WithQuietPeriod(quiet))
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		writeConfig(t, filepath.Join(dir, "keys.yaml"), "k1: secret\n")
		if err := os.Chmod(config, 0400); err != nil {
			t.Fatal(err)
		}

		assertStill(t, ctx, 3*quiet)
	})

	t.Run("stop cancels context without a change", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config)
		if err != nil {
			t.Fatal(err)
		}
		stop()

		<-ctx.Done()
		if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
			t.Errorf("unexpected cause: %v", cause)
		}
	})

	t.Run("when the parent context is done, so is the context", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "aquafarmd.yaml")
		writeConfig(t, config, "port: 8080\n")

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop, err := filewatch.UntilChanged(parent, config)
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		cancel()
		<-ctx.Done()
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("unexpected error: %v", ctx.Err())
		}
	})

	t.Run("when the directory of the config file does not exist, it returns error", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "missing", "aquafarmd.yaml")

		ctx, stop, err := filewatch.UntilChanged(context.Background(), config)
		if err == nil {
			stop()
			t.Fatal("expected error, but got nil")
		}
		if ctx != nil || stop != nil {
			t.Errorf("context and stop should be nil")
		}
	})
}
