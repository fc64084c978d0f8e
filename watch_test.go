package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitFile(t *testing.T) {
	old := watchTick
	watchTick = 20 * time.Millisecond
	defer func() { watchTick = old }()
	dir := t.TempDir()
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "OUTCAR"),
			[]byte("free  energy   TOTAL\n"), 0644)
	}()
	if err := WaitFile(dir, "OUTCAR", 5*time.Second); err != nil {
		t.Errorf("got %v, wanted nil\n", err)
	}
}

func TestWaitFileTimeout(t *testing.T) {
	old := watchTick
	watchTick = 20 * time.Millisecond
	defer func() { watchTick = old }()
	err := WaitFile(t.TempDir(), "OUTCAR", 150*time.Millisecond)
	if err != ErrTimeout {
		t.Errorf("got %v, wanted %v\n", err, ErrTimeout)
	}
}
