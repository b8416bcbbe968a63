package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/repository/base"
)

type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

const lessonColumns = `id, user_id, date, notes, topics, link, audio_ref, remaining_lessons, created_at, updated_at`

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var l model.Lesson
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Date,
		&l.Notes,
		&l.Topics,
		&l.Link,
		&l.AudioRef,
		&l.RemainingLessons,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create создаёт новый урок
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (user_id, date, notes, topics, link, audio_ref, remaining_lessons)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		lesson.UserID,
		lesson.Date,
		lesson.Notes,
		lesson.Topics,
		lesson.Link,
		lesson.AudioRef,
		lesson.RemainingLessons,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID получает урок по ID
func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// ListByUser получает все уроки пользователя, новые первыми
func (r *LessonRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE user_id = $1 ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := []*model.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

// GetLatestByUser получает последний по дате урок пользователя
func (r *LessonRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE user_id = $1 ORDER BY date DESC, created_at DESC LIMIT 1`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest lesson: %w", err)
	}

	return lesson, nil
}

// Update обновляет урок (полная замена полей)
func (r *LessonRepository) Update(ctx context.Context, lesson *model.Lesson) error {
	query := `
		UPDATE lessons
		SET date = $1, notes = $2, topics = $3, link = $4, audio_ref = $5,
		    remaining_lessons = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		lesson.Date,
		lesson.Notes,
		lesson.Topics,
		lesson.Link,
		lesson.AudioRef,
		lesson.RemainingLessons,
		lesson.ID,
	).Scan(&lesson.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("lesson not found")
		}
		return fmt.Errorf("update lesson: %w", err)
	}

	return nil
}

// Delete удаляет урок (безвозвратно, без soft-delete)
func (r *LessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM lessons WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}
