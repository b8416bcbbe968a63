package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Invite code parameters: 6 case-insensitive alphanumeric characters,
// ~2 * 10^9 combinations; collisions are caught by the store's unique
// constraint and retried.
const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLifetime = 24 * time.Hour
	codeRetryAttempts  = 5
)

type inviteCodeStore interface {
	Create(ctx context.Context, code *model.InviteCode) error
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.InviteCode, error)
	Redeem(ctx context.Context, code string, studentID uuid.UUID) (uuid.UUID, error)
}

type linkStore interface {
	Has(ctx context.Context, teacherID, studentID uuid.UUID) (bool, error)
	Delete(ctx context.Context, teacherID, studentID uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.TeacherStudentLink, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.TeacherStudentLink, error)
}

type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
}

type SharingService struct {
	inviteCodes inviteCodeStore
	linkStore   linkStore
	userStore   userStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewSharingService(
	inviteCodes inviteCodeStore,
	links linkStore,
	users userStore,
	logger *zap.Logger,
) *SharingService {
	return &SharingService{
		inviteCodes: inviteCodes,
		linkStore:   links,
		userStore:   users,
		logger:      logger,
		now:         time.Now,
	}
}

// generateCode генерирует случайный код из crypto/rand
func generateCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}

	code := make([]byte, inviteCodeLength)
	for i, b := range buf {
		code[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(code), nil
}

// CreateInviteCode создает invite-код для учителя со сроком жизни 24 часа.
// Коллизия строки кода — retry-able конфликт: генерируем новый код и
// повторяем вставку.
func (s *SharingService) CreateInviteCode(ctx context.Context, teacherID uuid.UUID) (*model.InviteCode, error) {
	teacher, err := s.userStore.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil || !teacher.IsTeacher() {
		return nil, model.ErrNotATeacher
	}

	var inviteCode *model.InviteCode

	backoff := retry.WithMaxRetries(codeRetryAttempts, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, err := generateCode()
		if err != nil {
			return err
		}

		expiresAt := s.now().Add(inviteCodeLifetime)
		candidate := &model.InviteCode{
			TeacherID: teacherID,
			Code:      code,
			ExpiresAt: &expiresAt,
		}

		if err := s.inviteCodes.Create(ctx, candidate); err != nil {
			if errors.Is(err, repository.ErrCodeCollision) {
				return retry.RetryableError(err)
			}
			return err
		}

		inviteCode = candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create invite code: %w", err)
	}

	s.logger.Info("Invite code created",
		zap.String("teacher_id", teacherID.String()),
		zap.String("code", inviteCode.Code),
	)

	return inviteCode, nil
}

// GetMyInviteCodes получает коды учителя
func (s *SharingService) GetMyInviteCodes(ctx context.Context, teacherID uuid.UUID) ([]*model.InviteCode, error) {
	codes, err := s.inviteCodes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher invite codes: %w", err)
	}

	return codes, nil
}

// RedeemInviteCode погашает код студентом и возвращает ID учителя.
// Сопоставление кода нечувствительно к регистру. Неизвестный, истёкший
// и уже использованный код дают одну и ту же ошибку
// (model.ErrInvalidOrExpiredCode); существующая связь даёт
// model.ErrAlreadyLinked, и код при этом остаётся непогашенным.
func (s *SharingService) RedeemInviteCode(ctx context.Context, studentID uuid.UUID, code string) (uuid.UUID, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return uuid.Nil, model.ErrInvalidOrExpiredCode
	}

	teacherID, err := s.inviteCodes.Redeem(ctx, normalized, studentID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidOrExpiredCode) || errors.Is(err, model.ErrAlreadyLinked) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("redeem invite code: %w", err)
	}

	s.logger.Info("Invite code redeemed",
		zap.String("student_id", studentID.String()),
		zap.String("teacher_id", teacherID.String()),
	)

	return teacherID, nil
}

// UnlinkTeacher удаляет связь студента с учителем. Идемпотентна:
// отсутствие связи не является ошибкой. Коды не затрагиваются.
func (s *SharingService) UnlinkTeacher(ctx context.Context, studentID, teacherID uuid.UUID) error {
	if err := s.linkStore.Delete(ctx, teacherID, studentID); err != nil {
		return fmt.Errorf("unlink teacher: %w", err)
	}

	s.logger.Info("Teacher unlinked",
		zap.String("student_id", studentID.String()),
		zap.String("teacher_id", teacherID.String()),
	)

	return nil
}

// GetMyTeachers получает учителей, связанных со студентом
func (s *SharingService) GetMyTeachers(ctx context.Context, studentID uuid.UUID) ([]*model.User, error) {
	links, err := s.linkStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student links: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.TeacherID)
	}

	teachers, err := s.userStore.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get teachers: %w", err)
	}

	return teachers, nil
}

// GetMyStudents получает студентов, связанных с учителем
func (s *SharingService) GetMyStudents(ctx context.Context, teacherID uuid.UUID) ([]*model.User, error) {
	links, err := s.linkStore.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list teacher links: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.StudentID)
	}

	students, err := s.userStore.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get students: %w", err)
	}

	return students, nil
}
