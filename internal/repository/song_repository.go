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

type SongRepository struct {
	pool *pgxpool.Pool
}

func NewSongRepository(pool *pgxpool.Pool) *SongRepository {
	return &SongRepository{pool: pool}
}

const songColumns = `id, user_id, title, artist, status, tabs_link, video_link, recording_link, artwork_url, notes, created_at, updated_at`

func scanSong(row pgx.Row) (*model.Song, error) {
	var s model.Song
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Artist,
		&s.Status,
		&s.TabsLink,
		&s.VideoLink,
		&s.RecordingLink,
		&s.ArtworkURL,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт новую песню
func (r *SongRepository) Create(ctx context.Context, song *model.Song) error {
	query := `
		INSERT INTO songs (user_id, title, artist, status, tabs_link, video_link, recording_link, artwork_url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		song.UserID,
		song.Title,
		song.Artist,
		song.Status,
		song.TabsLink,
		song.VideoLink,
		song.RecordingLink,
		song.ArtworkURL,
		song.Notes,
	).Scan(&song.ID, &song.CreatedAt, &song.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create song: %w", err)
	}

	return nil
}

// GetByID получает песню по ID
func (r *SongRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`

	song, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get song by id: %w", err)
	}

	return song, nil
}

// ListByUser получает все песни пользователя, отсортированные по названию
func (r *SongRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE user_id = $1 ORDER BY title`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := []*model.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}

// Update обновляет песню (полная замена полей)
func (r *SongRepository) Update(ctx context.Context, song *model.Song) error {
	query := `
		UPDATE songs
		SET title = $1, artist = $2, status = $3, tabs_link = $4, video_link = $5,
		    recording_link = $6, artwork_url = $7, notes = $8, updated_at = now()
		WHERE id = $9
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		song.Title,
		song.Artist,
		song.Status,
		song.TabsLink,
		song.VideoLink,
		song.RecordingLink,
		song.ArtworkURL,
		song.Notes,
		song.ID,
	).Scan(&song.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("song not found")
		}
		return fmt.Errorf("update song: %w", err)
	}

	return nil
}

// Delete удаляет песню
func (r *SongRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM songs WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("song not found")
	}

	return nil
}
