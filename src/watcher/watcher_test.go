package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "icon-source.png")
	if err := os.WriteFile(source, []byte("v1"), 0644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	changed := make(chan struct{}, 10)
	w, err := NewWatcher(source, 50*time.Millisecond, func() {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := os.WriteFile(source, []byte("v2"), 0644); err != nil {
		t.Fatalf("Failed to modify source: %v", err)
	}

	// Truncate-and-write may surface as Create or Write depending on OS
	select {
	case event := <-w.Events():
		if event.Type != EventCreated && event.Type != EventModified {
			t.Errorf("Expected EventCreated or EventModified, got %v", event.Type)
		}
		if filepath.Base(event.FilePath) != "icon-source.png" {
			t.Errorf("Expected event for icon-source.png, got %s", event.FilePath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for regeneration")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "icon-source.png")
	if err := os.WriteFile(source, []byte("v0"), 0644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	var calls atomic.Int32
	w, err := NewWatcher(source, 300*time.Millisecond, func() {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(source, []byte{byte(i)}, 0644); err != nil {
			t.Fatalf("Failed to modify source: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(1 * time.Second)

	if n := calls.Load(); n != 1 {
		t.Errorf("Expected 1 regeneration, got %d", n)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "icon-source.png")
	if err := os.WriteFile(source, []byte("v1"), 0644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	var calls atomic.Int32
	w, err := NewWatcher(source, 50*time.Millisecond, func() {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Icons written next to the source must not retrigger generation
	other := filepath.Join(tmpDir, "app-icon-192.png")
	if err := os.WriteFile(other, []byte("icon"), 0644); err != nil {
		t.Fatalf("Failed to create other file: %v", err)
	}

	select {
	case event := <-w.Events():
		t.Errorf("Should not receive event for other file, got: %v", event)
	case <-time.After(1 * time.Second):
		// Expected - no event received
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("Expected no regeneration, got %d", n)
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "icon-source.png")

	w, err := NewWatcher(source, DefaultDebounce, func() {})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("Expected closed events channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for events channel to close")
	}
}
