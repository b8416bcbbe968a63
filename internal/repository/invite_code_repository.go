package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/repository/base"
)

type InviteCodeRepository struct {
	pool *pgxpool.Pool
}

func NewInviteCodeRepository(pool *pgxpool.Pool) *InviteCodeRepository {
	return &InviteCodeRepository{pool: pool}
}

const inviteCodeColumns = `id, teacher_id, code, expires_at, used_by, used_at, created_at`

func scanInviteCode(row pgx.Row) (*model.InviteCode, error) {
	var c model.InviteCode
	err := row.Scan(
		&c.ID,
		&c.TeacherID,
		&c.Code,
		&c.ExpiresAt,
		&c.UsedBy,
		&c.UsedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create создает новый invite-код. Возвращает ErrCodeCollision при
// нарушении уникальности строки кода.
func (r *InviteCodeRepository) Create(ctx context.Context, code *model.InviteCode) error {
	query := `
		INSERT INTO invite_codes (teacher_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		code.TeacherID,
		code.Code,
		code.ExpiresAt,
	).Scan(&code.ID, &code.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrCodeCollision
		}
		return fmt.Errorf("create invite code: %w", err)
	}

	return nil
}

// ErrCodeCollision сигнализирует о совпадении сгенерированного кода с существующим
var ErrCodeCollision = fmt.Errorf("invite code collision")

// ListByTeacher получает все коды учителя
func (r *InviteCodeRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.InviteCode, error) {
	query := `SELECT ` + inviteCodeColumns + ` FROM invite_codes WHERE teacher_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	defer rows.Close()

	codes := []*model.InviteCode{}
	for rows.Next() {
		code, err := scanInviteCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite code: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invite codes: %w", err)
	}

	return codes, nil
}

// Redeem атомарно гасит код и создает связь учитель-студент.
// Поиск, вставка связи и отметка использования выполняются в одной
// транзакции; строка кода блокируется через FOR UPDATE, поэтому два
// одновременных погашения одного кода не создадут две связи.
func (r *InviteCodeRepository) Redeem(ctx context.Context, code string, studentID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback(ctx)

	lookup := `
		SELECT ` + inviteCodeColumns + `
		FROM invite_codes
		WHERE code = $1
		  AND used_by IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
		FOR UPDATE
	`

	inviteCode, err := scanInviteCode(tx.QueryRow(ctx, lookup, code))
	if err != nil {
		if base.IsNotFound(err) {
			// Неизвестный, истёкший и использованный код неразличимы для вызывающего
			return uuid.Nil, model.ErrInvalidOrExpiredCode
		}
		return uuid.Nil, fmt.Errorf("lookup invite code: %w", err)
	}

	insertLink := `
		INSERT INTO teacher_students (teacher_id, student_id)
		VALUES ($1, $2)
	`

	if _, err := tx.Exec(ctx, insertLink, inviteCode.TeacherID, studentID); err != nil {
		if base.IsUniqueViolation(err) {
			// Откат: код остаётся непогашенным
			return uuid.Nil, model.ErrAlreadyLinked
		}
		return uuid.Nil, fmt.Errorf("create teacher-student link: %w", err)
	}

	markUsed := `
		UPDATE invite_codes
		SET used_by = $1, used_at = now()
		WHERE id = $2 AND used_by IS NULL
	`

	tag, err := tx.Exec(ctx, markUsed, studentID, inviteCode.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("mark invite code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uuid.Nil, model.ErrInvalidOrExpiredCode
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit redeem tx: %w", err)
	}

	return inviteCode.TeacherID, nil
}

// DeleteExpiredBefore удаляет коды, истёкшие до указанного момента
func (r *InviteCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM invite_codes
		WHERE expires_at IS NOT NULL AND expires_at < $1 AND used_by IS NULL
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired invite codes: %w", err)
	}

	return result.RowsAffected(), nil
}
