package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lespal/lespal_server/internal/service"
)

// RegisterRoutes настраивает все маршруты API
func RegisterRoutes(app *fiber.App, h *Handlers, auth *service.AuthService) {
	api := app.Group("/api/v1")

	api.Post("/auth/signup", h.SignUp)
	api.Post("/auth/signin", h.SignIn)

	protected := api.Use(AuthJWT(auth))

	protected.Get("/songs", h.ListSongs)
	protected.Get("/songs/aggregated", h.ListAggregatedSongs)
	protected.Get("/songs/neglected", h.ListNeglectedSongs)
	protected.Post("/songs", h.CreateSong)
	protected.Put("/songs/:id", h.UpdateSong)
	protected.Delete("/songs/:id", h.DeleteSong)

	protected.Get("/lessons", h.ListLessons)
	protected.Post("/lessons", h.CreateLesson)
	protected.Put("/lessons/:id", h.UpdateLesson)
	protected.Delete("/lessons/:id", h.DeleteLesson)

	protected.Post("/sharing/invite-codes", h.CreateInviteCode)
	protected.Get("/sharing/invite-codes", h.ListInviteCodes)
	protected.Post("/sharing/redeem", h.RedeemInviteCode)
	protected.Get("/sharing/teachers", h.ListMyTeachers)
	protected.Get("/sharing/students", h.ListMyStudents)
	protected.Delete("/sharing/teachers/:teacherId", h.UnlinkTeacher)

	protected.Get("/insights/overview", h.GetOverview)
	protected.Get("/insights/summary", h.Summarize)

	protected.Get("/artwork", h.LookupArtwork)

	protected.Put("/settings/api-key", h.SetAPIKey)
	protected.Delete("/settings/api-key", h.DeleteAPIKey)
}
