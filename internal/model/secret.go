package model

import (
	"time"

	"github.com/google/uuid"
)

// Secret names currently in use
const SecretGeminiAPIKey = "gemini_api_key"

// UserSecret is one entry of the per-user opaque key-value settings store.
type UserSecret struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
