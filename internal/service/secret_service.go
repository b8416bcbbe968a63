package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
	"go.uber.org/zap"
)

type secretStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, name, value string) error
	Get(ctx context.Context, userID uuid.UUID, name string) (string, error)
	Delete(ctx context.Context, userID uuid.UUID, name string) error
}

// SecretService resolves per-user settings (currently one API key)
// through a read-time fallback chain; nothing is ever copied between
// accounts.
type SecretService struct {
	secrets secretStore
	links   linkStore
	users   userStore
	logger  *zap.Logger

	mu     sync.RWMutex
	cached map[uuid.UUID]string // own stored values only, never inherited
}

func NewSecretService(secrets secretStore, links linkStore, users userStore, logger *zap.Logger) *SecretService {
	return &SecretService{
		secrets: secrets,
		links:   links,
		users:   users,
		logger:  logger,
		cached:  make(map[uuid.UUID]string),
	}
}

// SetSecret сохраняет собственный секрет пользователя и сбрасывает кеш
func (s *SecretService) SetSecret(ctx context.Context, userID uuid.UUID, name, value string) error {
	if err := s.secrets.Upsert(ctx, userID, name, value); err != nil {
		return fmt.Errorf("set secret: %w", err)
	}

	s.mu.Lock()
	delete(s.cached, userID)
	s.mu.Unlock()

	return nil
}

// DeleteSecret удаляет собственный секрет пользователя
func (s *SecretService) DeleteSecret(ctx context.Context, userID uuid.UUID, name string) error {
	if err := s.secrets.Delete(ctx, userID, name); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}

	s.mu.Lock()
	delete(s.cached, userID)
	s.mu.Unlock()

	return nil
}

// ResolveEffectiveSecret возвращает действующее значение секрета для
// actor. Порядок: собственный секрет (с кешем), секрет первого
// связанного учителя (для студента), секрет просматриваемого студента
// (для учителя). Наследуемые значения не кешируются: они зависят от
// связей и от того, какой студент просматривается сейчас. Отсутствие
// на всех уровнях — пустая строка без ошибки: фича просто деградирует.
func (s *SecretService) ResolveEffectiveSecret(ctx context.Context, actor ActingContext, name string) (string, error) {
	own, err := s.ownSecret(ctx, actor.UserID, name)
	if err != nil {
		return "", err
	}
	if own != "" {
		return own, nil
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return "", fmt.Errorf("get acting user: %w", err)
	}
	if user == nil {
		return "", nil
	}

	if user.Role == model.RoleStudent {
		// Студент без ключа наследует ключ первого связанного учителя
		// (первого по порядку выдачи доступа)
		links, err := s.links.ListByStudent(ctx, actor.UserID)
		if err != nil {
			return "", fmt.Errorf("list student links: %w", err)
		}
		if len(links) > 0 {
			inherited, err := s.secrets.Get(ctx, links[0].TeacherID, name)
			if err != nil {
				return "", fmt.Errorf("get teacher secret: %w", err)
			}
			if inherited != "" {
				return inherited, nil
			}
		}
	}

	if user.IsTeacher() && actor.ViewingStudentID != nil {
		inherited, err := s.secrets.Get(ctx, *actor.ViewingStudentID, name)
		if err != nil {
			return "", fmt.Errorf("get student secret: %w", err)
		}
		if inherited != "" {
			return inherited, nil
		}
	}

	return "", nil
}

// ownSecret отдаёт собственный секрет пользователя, кешируя непустые значения
func (s *SecretService) ownSecret(ctx context.Context, userID uuid.UUID, name string) (string, error) {
	s.mu.RLock()
	if v, ok := s.cached[userID]; ok && v != "" {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	value, err := s.secrets.Get(ctx, userID, name)
	if err != nil {
		return "", fmt.Errorf("get own secret: %w", err)
	}

	if value != "" {
		s.mu.Lock()
		s.cached[userID] = value
		s.mu.Unlock()
	}

	return value, nil
}
