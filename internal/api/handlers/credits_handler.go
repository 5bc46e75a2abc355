package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scribely/content-api/internal/service"
)

type CreditsHandler struct {
	s service.CreditService
}

func NewCreditsHandler(service service.CreditService) *CreditsHandler {
	return &CreditsHandler{s: service}
}

func (h *CreditsHandler) GetBalance(c *fiber.Ctx) error {
	userID := GetUserID(c)

	balance, err := h.s.Balance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get credit balance",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"balance": balance,
	})
}

func (h *CreditsHandler) GetHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)
	page := c.QueryInt("page", 1)

	history, err := h.s.History(c.Context(), userID, page)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get credit history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(history)
}
