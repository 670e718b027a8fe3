// Package watcher reports changes to a document directory.
//
// Events are coalesced per path by a Debouncer and delivered in batches,
// so an editor that writes a file several times produces one change.
// Hidden files and directories are never reported.
package watcher

import "time"

// Operation is a file change.
type Operation int

const (
	// OpCreate reports a new file or directory.
	OpCreate Operation = iota
	// OpModify reports new contents for an existing file.
	OpModify
	// OpDelete reports a removed or renamed-away path.
	OpDelete
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a change to one path.
type FileEvent struct {
	// Path is slash-separated and relative to the watched root.
	Path      string
	Operation Operation
	// IsDir is false for deletions, since the path no longer exists.
	IsDir     bool
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is how long a path must stay quiet before its
	// event is emitted. Default: 200ms.
	DebounceWindow time.Duration

	// EventBufferSize is the number of batches held for a slow consumer.
	// Default: 64.
	EventBufferSize int

	// Include reports whether a file is of interest. Directories are
	// always reported. Nil includes every file.
	Include func(path string) bool
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		EventBufferSize: 64,
	}
}

// WithDefaults fills zero values from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = d.DebounceWindow
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}
