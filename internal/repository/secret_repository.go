package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/repository/base"
)

type SecretRepository struct {
	pool *pgxpool.Pool
}

func NewSecretRepository(pool *pgxpool.Pool) *SecretRepository {
	return &SecretRepository{pool: pool}
}

// Upsert сохраняет значение секрета пользователя
func (r *SecretRepository) Upsert(ctx context.Context, userID uuid.UUID, name, value string) error {
	query := `
		INSERT INTO user_secrets (user_id, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, userID, name, value); err != nil {
		return fmt.Errorf("upsert secret: %w", err)
	}

	return nil
}

// Get получает значение секрета. Отсутствие строки не является ошибкой.
func (r *SecretRepository) Get(ctx context.Context, userID uuid.UUID, name string) (string, error) {
	query := `
		SELECT value
		FROM user_secrets
		WHERE user_id = $1 AND name = $2
	`

	var value string
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(&value)
	if err != nil {
		if base.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get secret: %w", err)
	}

	return value, nil
}

// Delete удаляет секрет пользователя
func (r *SecretRepository) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	query := `
		DELETE FROM user_secrets
		WHERE user_id = $1 AND name = $2
	`

	if _, err := r.pool.Exec(ctx, query, userID, name); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}

	return nil
}
