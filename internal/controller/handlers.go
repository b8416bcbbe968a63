package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/lespal/lespal_server/internal/client"
	"github.com/lespal/lespal_server/internal/model"
	"github.com/lespal/lespal_server/internal/service"
	"go.uber.org/zap"
)

var validate = validator.New()

type Handlers struct {
	auth     *service.AuthService
	songs    *service.SongService
	lessons  *service.LessonService
	sharing  *service.SharingService
	secrets  *service.SecretService
	insights *service.InsightsService
	artwork  *client.ITunesClient
	logger   *zap.Logger
}

func NewHandlers(
	auth *service.AuthService,
	songs *service.SongService,
	lessons *service.LessonService,
	sharing *service.SharingService,
	secrets *service.SecretService,
	insights *service.InsightsService,
	artwork *client.ITunesClient,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		auth:     auth,
		songs:    songs,
		lessons:  lessons,
		sharing:  sharing,
		secrets:  secrets,
		insights: insights,
		artwork:  artwork,
		logger:   logger,
	}
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandler переводит доменные ошибки в HTTP-статусы. Ошибки
// стора отдаются как есть для ручного повтора действия.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, model.ErrInvalidOrExpiredCode):
			status = fiber.StatusBadRequest
		case errors.Is(err, model.ErrAlreadyLinked):
			status = fiber.StatusConflict
		case errors.Is(err, model.ErrEmailTaken):
			status = fiber.StatusConflict
		case errors.Is(err, model.ErrInvalidCredentials):
			status = fiber.StatusUnauthorized
		case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrNotATeacher):
			status = fiber.StatusForbidden
		case errors.Is(err, model.ErrNotFound):
			status = fiber.StatusNotFound
		}

		if status == fiber.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
}
