package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
)

// ActingContext says whose records an operation reads and writes:
// either the authenticated user's own, or — for a teacher that has
// selected one of their students — that student's. The selection is
// session-local view state, never persisted.
type ActingContext struct {
	UserID           uuid.UUID
	ViewingStudentID *uuid.UUID
}

// Self acts on the user's own records
func Self(userID uuid.UUID) ActingContext {
	return ActingContext{UserID: userID}
}

// TeacherViewing acts on a linked student's records
func TeacherViewing(teacherID, studentID uuid.UUID) ActingContext {
	return ActingContext{UserID: teacherID, ViewingStudentID: &studentID}
}

// ResolveScope возвращает ID пользователя, чьи записи читаются и
// пишутся. Просмотр студента разрешён только учителю, связанному с
// этим студентом; записи учителя при этом сохраняются под аккаунтом
// студента.
func (s *SharingService) ResolveScope(ctx context.Context, actor ActingContext) (uuid.UUID, error) {
	if actor.ViewingStudentID == nil {
		return actor.UserID, nil
	}

	user, err := s.userStore.GetByID(ctx, actor.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get acting user: %w", err)
	}
	if user == nil || !user.IsTeacher() {
		return uuid.Nil, model.ErrForbidden
	}

	linked, err := s.linkStore.Has(ctx, actor.UserID, *actor.ViewingStudentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check link: %w", err)
	}
	if !linked {
		return uuid.Nil, model.ErrForbidden
	}

	return *actor.ViewingStudentID, nil
}
