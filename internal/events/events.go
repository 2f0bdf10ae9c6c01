// Package events provides the catalog's internal event bus: a single-consumer
// FIFO queue that decouples the intent to mutate the catalog from performing
// the mutation.
package events

import "github.com/google/uuid"

// Kind routes a queued event to its registered handler.
type Kind int

const (
	// KindAddFileRecord requests creation of a new catalog file record.
	KindAddFileRecord Kind = iota
	// KindUpdateFileRecord requests an update of an existing file record.
	KindUpdateFileRecord
)

// String returns the kind's name for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindAddFileRecord:
		return "add_file_record"
	case KindUpdateFileRecord:
		return "update_file_record"
	default:
		return "unknown"
	}
}

// Event is a queued catalog-mutation intent. Events are immutable after
// creation: the bus owns a queued event exclusively until it is dequeued,
// then the handler for its kind does.
type Event struct {
	ID      uuid.UUID
	Kind    Kind
	Payload any
}

// New creates an event with a fresh identifier.
func New(kind Kind, payload any) Event {
	return Event{
		ID:      uuid.New(),
		Kind:    kind,
		Payload: payload,
	}
}

// FileChange is the payload carried by add/update file-record events. The
// content hash is deliberately absent: the handler recomputes it at mutation
// time so a file that changed between scan and persist is never recorded
// with a stale digest.
type FileChange struct {
	BasePathID int64
	Subdir     string
	Filename   string
	ModTime    int64
}
