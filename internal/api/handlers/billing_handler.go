package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/service"
	"github.com/scribely/content-api/internal/transfer"
)

type BillingHandler struct {
	s   service.BillingService
	cfg config.Config
}

func NewBillingHandler(cfg config.Config, service service.BillingService) *BillingHandler {
	return &BillingHandler{s: service, cfg: cfg}
}

func (h *BillingHandler) PaymentWebhook(c *fiber.Ctx) error {
	if h.cfg.BillingWebhookSecret != "" {
		sent := c.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(sent), []byte(h.cfg.BillingWebhookSecret)) != 1 {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
	}

	var requestData transfer.CreditPurchaseEvent
	if err := c.BodyParser(&requestData); err != nil {
		slog.Info(err.Error())
		return err
	}

	err := h.s.HandlePurchase(c.Context(), &requestData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
