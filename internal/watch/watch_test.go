package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalpel-dev/scalpel/internal/engine"
	"github.com/scalpel-dev/scalpel/internal/types"
)

const watchSample = `int main() {
    int x = 1;
    int y = 2;
    print(x);
    return 0;
}
`

func TestWatcherSlicesOnStartAndChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(path, []byte(watchSample), 0o644))

	eng := engine.New(nil, 0)
	defer eng.Close()

	results := make(chan string, 4)
	w := New(eng, path, "", types.Point{Line: 3, Column: 10}, types.Backward)
	w.OnResult = func(filtered string, _ types.Point) {
		results <- filtered
	}
	w.OnError = func(err error) {
		t.Errorf("watch error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case first := <-results:
		assert.NotContains(t, first, "int y = 2;")
		assert.Contains(t, first, "print(x)")
	case <-time.After(5 * time.Second):
		t.Fatal("no initial slice result")
	}

	// Rewrite the file; the watcher should re-slice the new content.
	updated := strings.Replace(watchSample, "int y = 2;", "int z = 3;", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case next := <-results:
		assert.NotContains(t, next, "int z = 3;")
	case <-time.After(5 * time.Second):
		t.Fatal("no slice result after change")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherCancelDuringDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(path, []byte(watchSample), 0o644))

	eng := engine.New(nil, 0)
	defer eng.Close()

	results := make(chan string, 4)
	w := New(eng, path, "", types.Point{Line: 3, Column: 10}, types.Backward)
	w.OnResult = func(filtered string, _ types.Point) {
		results <- filtered
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial slice result")
	}

	// Arm the debounce, then cancel before it can fire.
	require.NoError(t, os.WriteFile(path, []byte(watchSample), 0o644))
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	select {
	case <-results:
		t.Fatal("result delivered after shutdown")
	case <-time.After(3 * debounceDelay):
	}
}

func TestWatcherReportsReadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "absent.c")
	require.NoError(t, os.WriteFile(path, []byte(watchSample), 0o644))

	eng := engine.New(nil, 0)
	defer eng.Close()

	errs := make(chan error, 1)
	w := New(eng, filepath.Join(dir, "never-written.c"), "", types.Point{}, types.Backward)
	w.OnError = func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, os.ErrNotExist)
	case <-time.After(5 * time.Second):
		t.Fatal("missing file not reported")
	}
}
