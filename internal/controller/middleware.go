package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/service"
)

// Locals key set by AuthJWT
const localUserID = "user_id"

// AuthJWT проверяет Bearer-токен и кладёт идентичность в locals.
// Любая операция без активной сессии блокируется здесь.
func AuthJWT(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}

		userID, _, err := auth.ParseToken(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		// Роль не кладём в locals: сервисный слой проверяет её по
		// актуальной записи пользователя, а не по клейму токена
		c.Locals(localUserID, userID)

		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localUserID).(uuid.UUID)
	return id
}

// actingContext строит контекст операции из сессии и необязательного
// query-параметра student_id (учитель просматривает студента).
// Проверка связи выполняется сервисным слоем при резолвинге.
func actingContext(c *fiber.Ctx) (service.ActingContext, error) {
	userID := currentUserID(c)

	viewing := strings.TrimSpace(c.Query("student_id"))
	if viewing == "" {
		return service.Self(userID), nil
	}

	studentID, err := uuid.Parse(viewing)
	if err != nil {
		return service.ActingContext{}, fiber.NewError(fiber.StatusBadRequest, "Invalid student_id")
	}

	return service.TeacherViewing(userID, studentID), nil
}
