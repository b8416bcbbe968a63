package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/cache"
	"github.com/lespal/lespal_server/internal/model"
	"go.uber.org/zap"
)

type songStore interface {
	Create(ctx context.Context, song *model.Song) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Song, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Song, error)
	Update(ctx context.Context, song *model.Song) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SongService struct {
	songs   songStore
	sharing *SharingService
	cache   *cache.Store
	logger  *zap.Logger
}

func NewSongService(songs songStore, sharing *SharingService, cacheStore *cache.Store, logger *zap.Logger) *SongService {
	return &SongService{
		songs:   songs,
		sharing: sharing,
		cache:   cacheStore,
		logger:  logger,
	}
}

// List получает песни в рамках actor. Свежий кеш используется без
// похода в базу; force обходит кеш.
func (s *SongService) List(ctx context.Context, actor ActingContext, force bool) ([]*model.Song, error) {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	if !force {
		if songs, fresh := s.cache.Songs(userID); fresh {
			return songs, nil
		}
	}

	songs, err := s.songs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetSongs(userID, songs)
	if err := s.cache.Save(); err != nil {
		s.logger.Warn("Failed to persist cache", zap.Error(err))
	}

	return songs, nil
}

// ListAggregated получает агрегированный список с необязательным
// поиском по названию и исполнителю
func (s *SongService) ListAggregated(ctx context.Context, actor ActingContext, query string, force bool) ([]*model.AggregatedSong, error) {
	songs, err := s.List(ctx, actor, force)
	if err != nil {
		return nil, err
	}

	aggregated := Aggregate(songs)
	if query == "" {
		return aggregated, nil
	}

	q := strings.ToLower(query)
	filtered := make([]*model.AggregatedSong, 0, len(aggregated))
	for _, a := range aggregated {
		hay := strings.ToLower(a.Title + " " + a.Artist)
		if strings.Contains(hay, q) {
			filtered = append(filtered, a)
		}
	}

	return filtered, nil
}

// Create создаёт песню под аккаунтом, выбранным через actor
func (s *SongService) Create(ctx context.Context, actor ActingContext, song *model.Song) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	song.UserID = userID
	if err := s.songs.Create(ctx, song); err != nil {
		return err
	}

	s.cache.Clear(userID)

	s.logger.Info("Song created",
		zap.String("user_id", userID.String()),
		zap.String("song_id", song.ID.String()),
		zap.String("title", song.Title),
	)

	return nil
}

// Update обновляет песню. Песня должна принадлежать аккаунту actor.
func (s *SongService) Update(ctx context.Context, actor ActingContext, song *model.Song) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.songs.GetByID(ctx, song.ID)
	if err != nil {
		return fmt.Errorf("get song: %w", err)
	}
	if existing == nil {
		return model.ErrNotFound
	}
	if existing.UserID != userID {
		return model.ErrForbidden
	}

	song.UserID = userID
	if err := s.songs.Update(ctx, song); err != nil {
		return err
	}

	s.cache.Clear(userID)

	return nil
}

// Delete удаляет песню аккаунта actor
func (s *SongService) Delete(ctx context.Context, actor ActingContext, id uuid.UUID) error {
	userID, err := s.sharing.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get song: %w", err)
	}
	if existing == nil {
		return model.ErrNotFound
	}
	if existing.UserID != userID {
		return model.ErrForbidden
	}

	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Clear(userID)

	return nil
}
