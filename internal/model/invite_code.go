package model

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode represents an invite code created by a teacher for student linking.
// Lifecycle: issued -> redeemed (used_by set exactly once) | expired.
// Both terminal states are final; a new code must be issued.
type InviteCode struct {
	ID        int64      `json:"id"`
	TeacherID uuid.UUID  `json:"teacher_id"`
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at"` // nil = never expires
	UsedBy    *uuid.UUID `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsRedeemable checks if the code can still be redeemed
func (c *InviteCode) IsRedeemable(now time.Time) bool {
	if c.UsedBy != nil {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}
