// Package watch re-runs a callback when source files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a file must stay quiet before its callback fires.
const DefaultDelay = 200 * time.Millisecond

// Op is a set of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Event is a single change to a watched file.
type Event struct {
	Path string
	Op   Op
}

// Watcher reports changes to a set of files. Directories containing the
// files are watched rather than the files themselves, since editors often
// save by renaming a temporary file over the original.
type Watcher struct {
	w     *fsnotify.Watcher
	evC   chan Event
	erC   chan error
	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Watcher with nothing added.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw := &Watcher{
		w:     w,
		evC:   make(chan Event, 128),
		erC:   make(chan error, 1),
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
		done:  make(chan struct{}),
	}
	go fw.loop(w.Events, w.Errors)
	return fw, nil
}

// Add starts watching path.
func (fw *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.dirs[dir] {
		if err := fw.w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		fw.dirs[dir] = true
	}
	fw.files[abs] = true
	return nil
}

func (fw *Watcher) watched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return abs, fw.files[abs]
}

func (fw *Watcher) loop(events <-chan fsnotify.Event, errs <-chan error) {
	defer close(fw.evC)
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			path, ok := fw.watched(ev.Name)
			if !ok {
				continue
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if op == 0 {
				continue // chmod only
			}
			select {
			case fw.evC <- Event{Path: path, Op: op}:
			case <-fw.done:
				return
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Close stops the watcher and closes Events, dropping undelivered events.
func (fw *Watcher) Close() error {
	fw.closeOnce.Do(func() { close(fw.done) })
	return fw.w.Close()
}

// Run watches paths until ctx is done, calling onChange once per burst of
// events on a file after it has been quiet for delay. Callbacks for the same
// file never overlap.
func Run(ctx context.Context, paths []string, delay time.Duration, onChange func(path string)) error {
	if delay <= 0 {
		delay = DefaultDelay
	}

	fw, err := New()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			return err
		}
	}

	d := newDebouncer(delay, onChange)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			if ev.Op&(OpWrite|OpCreate|OpRename) != 0 {
				d.trigger(ev.Path)
			}
		case err := <-fw.Errors():
			return fmt.Errorf("watch: %w", err)
		}
	}
}

type debouncer struct {
	delay    time.Duration
	onChange func(string)

	mu     sync.Mutex
	timers map[string]*time.Timer
	busy   map[string]*sync.Mutex
}

func newDebouncer(delay time.Duration, onChange func(string)) *debouncer {
	return &debouncer{
		delay:    delay,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
		busy:     make(map[string]*sync.Mutex),
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[path]; ok {
		timer.Stop()
	}
	lock, ok := d.busy[path]
	if !ok {
		lock = &sync.Mutex{}
		d.busy[path] = lock
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.forgetLocked(path, timer)
		d.mu.Unlock()

		lock.Lock()
		defer lock.Unlock()
		d.onChange(path)
	})
	d.timers[path] = timer
}

func (d *debouncer) forget(path string, timer *time.Timer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forgetLocked(path, timer)
}

// forgetLocked drops the pending timer for path if it is still timer.
// d.mu must be held, which also orders the read of timer after trigger
// stored it.
func (d *debouncer) forgetLocked(path string, timer *time.Timer) {
	if d.timers[path] == timer {
		delete(d.timers, path)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, timer := range d.timers {
		timer.Stop()
		delete(d.timers, path)
	}
}
