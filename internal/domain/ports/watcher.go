package ports

import (
	"context"
	"time"
)

// FileWatcher follows files on disk. Every watched path reports on the
// same channel, and a change is reported once the file has settled.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// WatchedFile says which preview input a change belongs to
type WatchedFile int

const (
	DeckFile WatchedFile = iota
	RulesFile
)

// FileChangeEvent is one settled change to a watched file
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	File      WatchedFile
	Timestamp time.Time
}

// ChangeType says how a watched file changed
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
)

var changeTypeNames = [...]string{"modified", "created", "deleted"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeTypeNames) {
		return "unknown"
	}
	return changeTypeNames[c]
}
