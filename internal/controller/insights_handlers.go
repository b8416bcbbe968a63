package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/service"
)

func (h *Handlers) GetOverview(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	overview, err := h.insights.GetOverview(c.Context(), actor, c.QueryBool("force"))
	if err != nil {
		return err
	}

	return c.JSON(overview)
}

// Summarize вызывает AI-разбор заметок. Отсутствие ключа или уроков —
// деградация, а не сбой: отдаём пустой результат.
func (h *Handlers) Summarize(c *fiber.Ctx) error {
	actor, err := actingContext(c)
	if err != nil {
		return err
	}

	analysis, err := h.insights.Summarize(c.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrNoAPIKey) || errors.Is(err, service.ErrNoLessons) {
			return c.JSON(fiber.Map{"available": false})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"available": true,
		"analysis":  analysis,
	})
}

type secretRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *Handlers) SetAPIKey(c *fiber.Ctx) error {
	var req secretRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.secrets.SetSecret(c.Context(), currentUserID(c), model.SecretGeminiAPIKey, req.Value); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handlers) DeleteAPIKey(c *fiber.Ctx) error {
	if err := h.secrets.DeleteSecret(c.Context(), currentUserID(c), model.SecretGeminiAPIKey); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
