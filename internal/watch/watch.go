// Package watch re-slices a file every time it changes on disk, keeping a
// filtered view in sync while the source is being edited.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scalpel-dev/scalpel/internal/debug"
	"github.com/scalpel-dev/scalpel/internal/engine"
	"github.com/scalpel-dev/scalpel/internal/types"
)

// debounceDelay coalesces the bursts of write events editors produce when
// saving.
const debounceDelay = 100 * time.Millisecond

// Watcher re-runs one slice request against the current on-disk content of
// a file whenever it changes.
type Watcher struct {
	eng      *engine.Engine
	filename string
	point    types.Point
	dir      types.Direction
	language string

	// OnResult receives the filtered content after each slice. OnError
	// receives per-change failures; the watch loop keeps running after
	// them.
	OnResult func(filtered string, cursor types.Point)
	OnError  func(err error)
}

// New builds a Watcher for a file and a fixed seed point/direction.
func New(eng *engine.Engine, filename, language string, point types.Point, dir types.Direction) *Watcher {
	return &Watcher{eng: eng, filename: filename, language: language, point: point, dir: dir}
}

// Run slices once immediately, then re-slices on every change until the
// context is cancelled. The parent directory is watched rather than the
// file itself, so editors that replace the file on save keep working.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.filename)
	if err := fw.Add(dir); err != nil {
		return err
	}

	w.sliceOnce()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.filename) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debug.Log("WATCH", "%s changed", event.Name)
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}
		case <-timerC:
			w.sliceOnce()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) sliceOnce() {
	content, err := os.ReadFile(w.filename)
	if err != nil {
		w.reportError(err)
		return
	}
	filtered, cursor, err := w.eng.SliceText(types.SliceRequest{
		Source: types.Source{
			Filename: w.filename,
			Content:  string(content),
			Language: w.language,
			Point:    w.point,
		},
		Direction: w.dir,
	})
	if err != nil {
		w.reportError(err)
		return
	}
	if w.OnResult != nil {
		w.OnResult(filtered, cursor)
	}
}

func (w *Watcher) reportError(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
