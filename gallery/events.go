package gallery

import "time"

type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"
	EventProofRecorded  EventType = "proof_recorded"
	EventProofCleared   EventType = "proof_cleared"
	EventDownload       EventType = "download"
)

// Event is published after a successful workflow operation
type Event struct {
	Type               EventType `json:"type"`
	OwnerID            uint64    `json:"-"` // studio user owning the gallery
	GalleryID          uint64    `json:"gallery_id"`
	GalleryName        string    `json:"gallery_name"`
	SessionID          string    `json:"session_id,omitempty"`
	ClientProfileID    *uint64   `json:"client_profile_id,omitempty"`
	PhotoID            uint64    `json:"photo_id,omitempty"`
	IsFavorite         bool      `json:"is_favorite,omitempty"`
	IsMarkedForEditing bool      `json:"is_marked_for_editing,omitempty"`
	Count              int       `json:"count,omitempty"`
	At                 time.Time `json:"at"`
}

// EventSink must not block, slow consumers should queue or drop
type EventSink interface {
	Publish(e Event)
}

// Sinks fans an event out to several sinks
type Sinks []EventSink

func (s Sinks) Publish(e Event) {
	for _, sink := range s {
		sink.Publish(e)
	}
}
