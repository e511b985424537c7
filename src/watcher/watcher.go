package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the icon source image and regenerates icons when it changes
type Watcher struct {
	source   string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	events   chan Event

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// Event represents a change to the source image
type Event struct {
	Type     EventType
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

// NewWatcher creates a watcher for source. onChange runs once per burst of
// create/write events, after the debounce delay.
func NewWatcher(source string, debounce time.Duration, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		source:   abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		done:     make(chan struct{}),
	}, nil
}

// Start begins monitoring the source image.
// The parent directory is watched so editors that replace the file
// by renaming over it are still seen.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.source)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}
	log.Printf("Watching source image: %s", w.source)

	go w.processEvents()

	return nil
}

// processEvents handles fsnotify events for the source file
func (w *Watcher) processEvents() {
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.source {
				continue
			}

			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// handleEvent publishes the event and schedules regeneration
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreated
	case event.Has(fsnotify.Write):
		eventType = EventModified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eventType = EventDeleted
	default:
		return // Ignore chmod
	}

	select {
	case w.events <- Event{Type: eventType, FilePath: event.Name}:
	default:
		// Nobody is reading events; regeneration still happens
	}

	if eventType == EventDeleted {
		log.Printf("Source image removed: %s", event.Name)
		return
	}

	w.schedule()
}

// schedule (re)starts the debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		log.Printf("Source image changed, regenerating icons")
		w.onChange()
	})
}

// Events returns the event channel. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher and cancels any pending regeneration
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
