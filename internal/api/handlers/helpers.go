package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/scribely/content-api/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// statusFor maps service-layer errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrConnectionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidScheduleTime),
		errors.Is(err, service.ErrNoTargets):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidStateTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
