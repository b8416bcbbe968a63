package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/cache"
	"github.com/lespal/lespal_server/internal/model"
	"go.uber.org/zap"
)

type lessonStore interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Lesson, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LessonService struct {
	lessons lessonStore
	sharing *SharingService
	cache   *cache.Store
	logger  *zap.Logger
}

func NewLessonService(lessons lessonStore, sharing *SharingService, cacheStore *cache.Store, logger *zap.Logger) *LessonService {
	return &LessonService{
		lessons: lessons,
		sharing: sharing,
		cache:   cacheStore,
		logger:  logger,
	}
}

// List получает уроки в рамках actor, новые первыми
func (s *LessonService) List(ctx context.Context, actor ActingContext, force bool) ([]*model.Lesson, error) {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	if !force {
		if lessons, fresh := s.cache.Lessons(userID); fresh {
			return lessons, nil
		}
	}

	lessons, err := s.lessons.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetLessons(userID, lessons)
	if err := s.cache.Save(); err != nil {
		s.logger.Warn("Failed to persist cache", zap.Error(err))
	}

	return lessons, nil
}

// Create создаёт урок. Если remaining_lessons не задан (nil),
// берётся значение предыдущего урока минус один, но не меньше нуля.
func (s *LessonService) Create(ctx context.Context, actor ActingContext, lesson *model.Lesson, remaining *int) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	if remaining != nil {
		lesson.RemainingLessons = *remaining
	} else {
		previous, err := s.lessons.GetLatestByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("get previous lesson: %w", err)
		}
		lesson.RemainingLessons = 0
		if previous != nil && previous.RemainingLessons > 0 {
			lesson.RemainingLessons = previous.RemainingLessons - 1
		}
	}

	lesson.UserID = userID
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return err
	}

	s.cache.Clear(userID)

	s.logger.Info("Lesson created",
		zap.String("user_id", userID.String()),
		zap.String("lesson_id", lesson.ID.String()),
		zap.Time("date", lesson.Date),
	)

	return nil
}

// Update обновляет урок полной заменой полей
func (s *LessonService) Update(ctx context.Context, actor ActingContext, lesson *model.Lesson) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.lessons.GetByID(ctx, lesson.ID)
	if err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}
	if existing == nil {
		return model.ErrNotFound
	}
	if existing.UserID != userID {
		return model.ErrForbidden
	}

	lesson.UserID = userID
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return err
	}

	s.cache.Clear(userID)

	return nil
}

// Delete удаляет урок. Безвозвратно.
func (s *LessonService) Delete(ctx context.Context, actor ActingContext, id uuid.UUID) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}
	if existing == nil {
		return model.ErrNotFound
	}
	if existing.UserID != userID {
		return model.ErrForbidden
	}

	if err := s.lessons.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Clear(userID)

	return nil
}

// Neglected возвращает "заброшенные" песни: в статусе rehearsing и не
// встречавшиеся в темах последних уроков
func (s *LessonService) Neglected(ctx context.Context, actor ActingContext, songs []*model.Song) ([]*model.Song, error) {
	lessons, err := s.List(ctx, actor, false)
	if err != nil {
		return nil, err
	}

	return Neglected(songs, lessons), nil
}
