package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
)

type lessonRequest struct {
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes            string `json:"notes"`
	Topics           string `json:"topics"`
	Link             string `json:"link"`
	AudioRef         string `json:"audio_ref"`
	RemainingLessons *int   `json:"remaining_lessons" validate:"omitempty,min=0"`
}

func (r *lessonRequest) toModel() (*model.Lesson, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid date")
	}

	return &model.Lesson{
		Date:     date,
		Notes:    r.Notes,
		Topics:   r.Topics,
		Link:     r.Link,
		AudioRef: r.AudioRef,
	}, nil
}

func (h *Handlers) ListLessons(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	lessons, err := h.lessons.List(c.Context(), actor, c.QueryBool("force"))
	if err != nil {
		return err
	}

	return c.JSON(lessons)
}

func (h *Handlers) CreateLesson(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	var req lessonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lesson, err := req.toModel()
	if err != nil {
		return err
	}

	if err := h.lessons.Create(c.Context(), actor, lesson, req.RemainingLessons); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *Handlers) UpdateLesson(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid lesson id")
	}

	var req lessonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lesson, err := req.toModel()
	if err != nil {
		return err
	}
	lesson.ID = id
	if req.RemainingLessons != nil {
		lesson.RemainingLessons = *req.RemainingLessons
	}

	if err := h.lessons.Update(c.Context(), actor, lesson); err != nil {
		return err
	}

	return c.JSON(lesson)
}

func (h *Handlers) DeleteLesson(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid lesson id")
	}

	if err := h.lessons.Delete(c.Context(), actor, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
