package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lespal/lespal_server/internal/model"
)

type LinkRepository struct {
	pool *pgxpool.Pool
}

func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

// Has проверяет, есть ли связь между учителем и студентом
func (r *LinkRepository) Has(ctx context.Context, teacherID, studentID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM teacher_students
			WHERE teacher_id = $1 AND student_id = $2
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, teacherID, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}

	return exists, nil
}

// Delete удаляет связь. Отсутствие строки не является ошибкой.
func (r *LinkRepository) Delete(ctx context.Context, teacherID, studentID uuid.UUID) error {
	query := `
		DELETE FROM teacher_students
		WHERE teacher_id = $1 AND student_id = $2
	`

	if _, err := r.pool.Exec(ctx, query, teacherID, studentID); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	return nil
}

// ListByStudent получает все связи студента, старые первыми
func (r *LinkRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.TeacherStudentLink, error) {
	query := `
		SELECT id, teacher_id, student_id, created_at
		FROM teacher_students
		WHERE student_id = $1
		ORDER BY created_at
	`

	return r.list(ctx, query, studentID)
}

// ListByTeacher получает все связи учителя, старые первыми
func (r *LinkRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*model.TeacherStudentLink, error) {
	query := `
		SELECT id, teacher_id, student_id, created_at
		FROM teacher_students
		WHERE teacher_id = $1
		ORDER BY created_at
	`

	return r.list(ctx, query, teacherID)
}

func (r *LinkRepository) list(ctx context.Context, query string, id uuid.UUID) ([]*model.TeacherStudentLink, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []*model.TeacherStudentLink{}
	for rows.Next() {
		var link model.TeacherStudentLink
		err := rows.Scan(
			&link.ID,
			&link.TeacherID,
			&link.StudentID,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	return links, nil
}
