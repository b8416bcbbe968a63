package model

import (
	"time"

	"github.com/google/uuid"
)

// TeacherStudentLink represents a directed teacher->student relationship
// created by invite-code redemption. Unique per (teacher_id, student_id).
// Grants the teacher read/write access to the student's songs and
// lessons, not the other way around.
type TeacherStudentLink struct {
	ID        int64     `json:"id"`
	TeacherID uuid.UUID `json:"teacher_id"`
	StudentID uuid.UUID `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
