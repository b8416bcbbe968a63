package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Song statuses. "recorded" is a legacy value still present in old
// rows; it is read as an alias of "studied" everywhere statuses are
// compared or aggregated.
const (
	StatusWant       = "want"
	StatusRehearsing = "rehearsing"
	StatusStudied    = "studied"
	StatusRecorded   = "recorded"
)

// StatusVocabulary is the fixed set of statuses the song list is
// grouped by, in display order.
var StatusVocabulary = []string{StatusRehearsing, StatusWant, StatusStudied}

// CanonicalStatus collapses the legacy "recorded" alias into "studied".
func CanonicalStatus(status string) string {
	if status == StatusRecorded {
		return StatusStudied
	}
	return status
}

type Song struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Status        string    `json:"status"`
	TabsLink      string    `json:"tabs_link"`
	VideoLink     string    `json:"video_link"`
	RecordingLink string    `json:"recording_link"`
	ArtworkURL    string    `json:"artwork_url"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SongKey identifies a song by normalized (title, artist). A struct
// key instead of a joined string, so a title containing any separator
// sequence can never collide with another pair.
type SongKey struct {
	Title  string
	Artist string
}

// KeyFor normalizes via trim + lowercase.
func KeyFor(title, artist string) SongKey {
	return SongKey{
		Title:  strings.ToLower(strings.TrimSpace(title)),
		Artist: strings.ToLower(strings.TrimSpace(artist)),
	}
}

// AggregatedSong is the display entity for one (title, artist) pair.
// Derived on every read, never persisted.
type AggregatedSong struct {
	Key           SongKey   `json:"-"`
	ID            uuid.UUID `json:"id"` // first-seen raw id
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Statuses      []string  `json:"statuses"`
	TabsLink      string    `json:"tabs_link"`
	VideoLink     string    `json:"video_link"`
	RecordingLink string    `json:"recording_link"`
	ArtworkURL    string    `json:"artwork_url"`
	Notes         string    `json:"notes"`
}

// HasStatus reports whether the aggregate carries the given canonical status.
func (a *AggregatedSong) HasStatus(status string) bool {
	for _, s := range a.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
