package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/service"
	"github.com/scribely/content-api/internal/transfer"
	"github.com/scribely/content-api/pkg/utils"
)

type ConnectionHandler struct {
	s   service.ConnectionService
	cfg config.Config
}

func NewConnectionHandler(cfg config.Config, service service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{s: service, cfg: cfg}
}

func (h *ConnectionHandler) AddConnection(c *fiber.Ctx) error {
	authURL := h.s.GetAuthURL(c.Context(), c.Params("platform"), c.Query("state"))
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Platform does not support OAuth linking",
		})
	}
	return c.Redirect(authURL)
}

func (h *ConnectionHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	if _, err := h.s.OAuthCallback(c.Context(), userID, platform, code); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/connections", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *ConnectionHandler) ConnectManual(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ManualConnectRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	connectionID, err := h.s.ConnectManual(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"connection_id": connectionID,
	})
}

func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	userID := GetUserID(c)

	connections, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social connections",
		})
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

func (h *ConnectionHandler) DeleteConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connectionID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(connectionID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to delete social connection",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
