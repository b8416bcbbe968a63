package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Date             time.Time `json:"date"` // calendar date, time part ignored
	Notes            string    `json:"notes"`
	Topics           string    `json:"topics"` // comma-delimited song ids, empty allowed
	Link             string    `json:"link"`
	AudioRef         string    `json:"audio_ref"`
	RemainingLessons int       `json:"remaining_lessons"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TopicIDs splits the delimited topics string, dropping empty entries.
func (l *Lesson) TopicIDs() []string {
	parts := strings.Split(l.Topics, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
