package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// poll fallback interval, shortened in tests
var watchTick = 5 * time.Second

// WaitFile blocks until dir/name exists with a size that has settled
// between two looks, or until timeout. A directory watcher wakes the
// check early; a ticker covers events delivered before the watch was
// in place and filesystems that drop them
func WaitFile(dir, name string, timeout time.Duration) error {
	target := filepath.Join(dir, name)
	w, err := fsnotify.NewWatcher()
	if err == nil {
		defer w.Close()
		// a failed Add leaves only the ticker, which still works
		w.Add(dir)
	}
	var (
		events   chan fsnotify.Event
		lastSize int64 = -1
	)
	if w != nil {
		events = w.Events
	}
	check := func() bool {
		fi, err := os.Stat(target)
		if err != nil {
			lastSize = -1
			return false
		}
		if fi.Size() > 0 && fi.Size() == lastSize {
			return true
		}
		lastSize = fi.Size()
		return false
	}
	if check() {
		return nil
	}
	tick := time.NewTicker(watchTick)
	defer tick.Stop()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			if ev.Name != target {
				continue
			}
			if check() {
				return nil
			}
		case <-tick.C:
			if check() {
				return nil
			}
		case <-deadline:
			return ErrTimeout
		}
	}
}
