package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// PollingWatcher watches files by polling their size, mtime and checksum.
// One watcher can follow several files; all events share one channel.
type PollingWatcher struct {
	interval  time.Duration
	debounce  time.Duration
	logger    ports.Logger
	snapshots map[string]snapshot
	events    chan ports.FileChangeEvent
	mu        sync.RWMutex
	wg        sync.WaitGroup
	stopped   bool
	stopCh    chan struct{}
}

// snapshot is the last observed state of a file
type snapshot struct {
	Size     int64
	ModTime  time.Time
	Checksum string
}

// NewPollingWatcher creates a watcher polling every interval. Changes are
// reported once the file has been quiet for the debounce period.
func NewPollingWatcher(interval, debounce time.Duration, logger ports.Logger) *PollingWatcher {
	return &PollingWatcher{
		interval:  interval,
		debounce:  debounce,
		logger:    logger,
		snapshots: make(map[string]snapshot),
		events:    make(chan ports.FileChangeEvent, 10),
		stopCh:    make(chan struct{}),
	}
}

// Watch starts watching a file for changes
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	current, err := w.read(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, errors.New("watcher stopped")
	}
	w.snapshots[absPath] = current
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.logger.Debug("watching file", "path", absPath, "interval", w.interval, "debounce", w.debounce)

	return w.events, nil
}

// Stop stops all polling and closes the event channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)

	return nil
}

// pollLoop polls one file and emits a debounced event after it settles
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		pending    bool
		pendingTyp ports.ChangeType
		lastChange time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			changeType, changed, err := w.check(path)
			if err != nil {
				w.logger.Warn("watch error", "path", path, "error", err)
				continue
			}

			if changed {
				if !pending || changeType != ports.Modified {
					pendingTyp = changeType
				}
				pending = true
				lastChange = time.Now()
			}

			if !pending || time.Since(lastChange) < w.debounce {
				continue
			}

			event := ports.FileChangeEvent{
				Path:      path,
				Type:      pendingTyp,
				Timestamp: time.Now(),
			}

			select {
			case w.events <- event:
				pending = false
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// check compares the file with its last snapshot
func (w *PollingWatcher) check(path string) (ports.ChangeType, bool, error) {
	w.mu.RLock()
	previous, known := w.snapshots[path]
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if !known {
				return ports.Deleted, false, nil
			}
			w.mu.Lock()
			delete(w.snapshots, path)
			w.mu.Unlock()
			return ports.Deleted, true, nil
		}
		return ports.Modified, false, fmt.Errorf("stat file: %w", err)
	}

	// Size and mtime unchanged means the content is unchanged
	if known && previous.Size == info.Size() && previous.ModTime.Equal(info.ModTime()) {
		return ports.Modified, false, nil
	}

	checksum, err := checksumFile(path)
	if err != nil {
		return ports.Modified, false, fmt.Errorf("calculate checksum: %w", err)
	}

	current := snapshot{Size: info.Size(), ModTime: info.ModTime(), Checksum: checksum}
	w.store(path, current)

	if !known {
		return ports.Created, true, nil
	}
	return ports.Modified, previous.Checksum != checksum, nil
}

func (w *PollingWatcher) read(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return snapshot{}, fmt.Errorf("stat file: %w", err)
	}

	checksum, err := checksumFile(path)
	if err != nil {
		return snapshot{}, fmt.Errorf("calculate checksum: %w", err)
	}

	return snapshot{Size: info.Size(), ModTime: info.ModTime(), Checksum: checksum}, nil
}

func (w *PollingWatcher) store(path string, s snapshot) {
	w.mu.Lock()
	w.snapshots[path] = s
	w.mu.Unlock()
}

// checksumFile returns the hex SHA-256 of a file
func checksumFile(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
