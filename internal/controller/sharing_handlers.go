package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lespal/lespal_server/internal/model"
)

type inviteCodeResponse struct {
	*model.InviteCode
	Active bool `json:"active"`
}

func (h *Handlers) CreateInviteCode(c *fiber.Ctx) error {
	code, err := h.sharing.CreateInviteCode(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(code)
}

func (h *Handlers) ListInviteCodes(c *fiber.Ctx) error {
	codes, err := h.sharing.GetMyInviteCodes(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	now := time.Now()
	out := make([]inviteCodeResponse, 0, len(codes))
	for _, code := range codes {
		out = append(out, inviteCodeResponse{InviteCode: code, Active: code.IsRedeemable(now)})
	}

	return c.JSON(out)
}

type redeemRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *Handlers) RedeemInviteCode(c *fiber.Ctx) error {
	var req redeemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	teacherID, err := h.sharing.RedeemInviteCode(c.Context(), currentUserID(c), req.Code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"teacher_id": teacherID,
	})
}

func (h *Handlers) ListMyTeachers(c *fiber.Ctx) error {
	teachers, err := h.sharing.GetMyTeachers(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(teachers)
}

func (h *Handlers) ListMyStudents(c *fiber.Ctx) error {
	students, err := h.sharing.GetMyStudents(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(students)
}

func (h *Handlers) UnlinkTeacher(c *fiber.Ctx) error {
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid teacher id")
	}

	if err := h.sharing.UnlinkTeacher(c.Context(), currentUserID(c), teacherID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
