package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Чистим коды, истёкшие больше месяца назад: достаточно свежие ещё
// нужны учителю в списке своих кодов
const expiredCodeRetention = 30 * 24 * time.Hour

type inviteCodeCleaner interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	inviteCodes inviteCodeCleaner
	logger      *zap.Logger
	stopChan    chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(inviteCodes inviteCodeCleaner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		inviteCodes: inviteCodes,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runInviteCodeCleanupTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runInviteCodeCleanupTask периодически удаляет давно истёкшие invite-коды
func (s *Scheduler) runInviteCodeCleanupTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.cleanupExpiredCodes(ctx)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpiredCodes(ctx)
		case <-s.stopChan:
			s.logger.Info("Invite code cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Invite code cleanup task cancelled")
			return
		}
	}
}

// cleanupExpiredCodes удаляет непогашенные коды, истёкшие до порога хранения
func (s *Scheduler) cleanupExpiredCodes(ctx context.Context) {
	cutoff := time.Now().Add(-expiredCodeRetention)

	deleted, err := s.inviteCodes.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to clean up expired invite codes", zap.Error(err))
		return
	}

	if deleted > 0 {
		s.logger.Info("Expired invite codes cleaned up", zap.Int64("deleted", deleted))
	}
}
