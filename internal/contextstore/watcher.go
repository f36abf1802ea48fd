package contextstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// NoteWatcher notifies when a note file is rewritten by another process or by
// a concurrently running executor for the same project. Long-lived callers use
// it to surface "context updated" without polling.
type NoteWatcher struct {
	store   *Store
	watcher *fsnotify.Watcher

	debounce time.Duration
	ch       chan Category

	mu      sync.Mutex
	pending map[Category]bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNoteWatcher creates a watcher over the store's .agent directory. The
// directory is created if it does not exist yet, so notes written later are
// still observed.
func NewNoteWatcher(store *Store) (*NoteWatcher, error) {
	if err := os.MkdirAll(store.Dir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", AgentDir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create note watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", store.Dir(), err)
	}

	return &NoteWatcher{
		store:    store,
		watcher:  w,
		debounce: 500 * time.Millisecond,
		ch:       make(chan Category, 16),
		pending:  make(map[Category]bool),
	}, nil
}

// Changes returns the channel of changed categories. It is closed on Stop.
func (nw *NoteWatcher) Changes() <-chan Category { return nw.ch }

// Start begins delivering change notifications until ctx is done or Stop is
// called. Events are debounced so one logical write yields one notification.
func (nw *NoteWatcher) Start(ctx context.Context) {
	ctx, nw.cancel = context.WithCancel(ctx)
	nw.wg.Add(1)

	go func() {
		defer nw.wg.Done()
		defer close(nw.ch)

		ticker := time.NewTicker(nw.debounce)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-nw.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if c, ok := categoryForFile(ev.Name); ok {
					nw.mu.Lock()
					nw.pending[c] = true
					nw.mu.Unlock()
				}
			case <-nw.watcher.Errors:
				// Watch errors are not fatal for note delivery; keep going.
			case <-ticker.C:
				nw.flush(ctx)
			}
		}
	}()
}

func (nw *NoteWatcher) flush(ctx context.Context) {
	nw.mu.Lock()
	if len(nw.pending) == 0 {
		nw.mu.Unlock()
		return
	}
	batch := make([]Category, 0, len(nw.pending))
	for c := range nw.pending {
		batch = append(batch, c)
	}
	nw.pending = make(map[Category]bool)
	nw.mu.Unlock()

	for _, c := range batch {
		select {
		case nw.ch <- c:
		case <-ctx.Done():
			return
		}
	}
}

// Stop shuts the watcher down and waits for the delivery goroutine to exit.
func (nw *NoteWatcher) Stop() {
	if nw.cancel != nil {
		nw.cancel()
	}
	nw.watcher.Close()
	nw.wg.Wait()
}

// categoryForFile maps a watched file path back to its category. Non-note
// files in .agent (agents.json, workspace.db) are ignored.
func categoryForFile(path string) (Category, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".md") {
		return "", false
	}
	c, err := ParseCategory(strings.TrimSuffix(base, ".md"))
	if err != nil {
		return "", false
	}
	return c, true
}
