package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // 'student' or 'teacher'
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
