package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/service"
)

type songRequest struct {
	Title         string `json:"title" validate:"required"`
	Artist        string `json:"artist"`
	Status        string `json:"status" validate:"omitempty,oneof=want rehearsing studied recorded"`
	TabsLink      string `json:"tabs_link"`
	VideoLink     string `json:"video_link"`
	RecordingLink string `json:"recording_link"`
	ArtworkURL    string `json:"artwork_url"`
	Notes         string `json:"notes"`
}

func (r *songRequest) toModel() *model.Song {
	return &model.Song{
		Title:         r.Title,
		Artist:        r.Artist,
		Status:        r.Status,
		TabsLink:      r.TabsLink,
		VideoLink:     r.VideoLink,
		RecordingLink: r.RecordingLink,
		ArtworkURL:    r.ArtworkURL,
		Notes:         r.Notes,
	}
}

func (h *Handlers) ListSongs(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	force := c.QueryBool("force")
	songs, err := h.songs.List(c.Context(), actor, force)
	if err != nil {
		return err
	}

	return c.JSON(songs)
}

// ListAggregatedSongs отдаёт агрегированный список и группировку по
// статусам для вкладки песен
func (h *Handlers) ListAggregatedSongs(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	aggregated, err := h.songs.ListAggregated(c.Context(), actor, c.Query("q"), c.QueryBool("force"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"songs":  aggregated,
		"groups": service.GroupByStatus(aggregated),
	})
}

func (h *Handlers) CreateSong(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	var req songRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	song := req.toModel()
	// Пустая обложка автозаполняется из iTunes; промах не мешает созданию
	if song.ArtworkURL == "" {
		song.ArtworkURL = h.artwork.FindArtworkURL(c.Context(), song.Artist, song.Title)
	}

	if err := h.songs.Create(c.Context(), actor, song); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(song)
}

func (h *Handlers) UpdateSong(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid song id")
	}

	var req songRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	song := req.toModel()
	song.ID = id

	if err := h.songs.Update(c.Context(), actor, song); err != nil {
		return err
	}

	return c.JSON(song)
}

func (h *Handlers) DeleteSong(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid song id")
	}

	if err := h.songs.Delete(c.Context(), actor, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListNeglectedSongs отдаёт заброшенные песни: rehearsing и без
// упоминаний в темах последних уроков
func (h *Handlers) ListNeglectedSongs(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	songs, err := h.songs.List(c.Context(), actor, c.QueryBool("force"))
	if err != nil {
		return err
	}

	neglected, err := h.lessons.Neglected(c.Context(), actor, songs)
	if err != nil {
		return err
	}

	return c.JSON(neglected)
}

// LookupArtwork ищет обложку для пары исполнитель+название.
// Отсутствие результата — не ошибка, просто пустой URL.
func (h *Handlers) LookupArtwork(c *fiber.Ctx) error {
	url := h.artwork.FindArtworkURL(c.Context(), c.Query("artist"), c.Query("title"))
	return c.JSON(fiber.Map{"artwork_url": url})
}
