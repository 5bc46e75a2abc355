package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/scribely/content-api/internal/service"
	"github.com/scribely/content-api/internal/transfer"
)

type PublishHandler struct {
	s service.PublishService
}

func NewPublishHandler(service service.PublishService) *PublishHandler {
	return &PublishHandler{s: service}
}

func (h *PublishHandler) PublishNow(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishNowRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	outcome, err := h.s.PublishNow(c.Context(), userID, &req)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(outcome)
}

func (h *PublishHandler) TestConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connectionID := c.QueryInt("id", 0)

	result, err := h.s.TestConnection(c.Context(), userID, int64(connectionID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PublishHandler) History(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("post_id", 0)

	if postID != 0 {
		logs, err := h.s.HistoryForPost(c.Context(), userID, int64(postID))
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": "Unable to get publishing history",
			})
		}
		return c.Status(fiber.StatusOK).JSON(logs)
	}

	logs, err := h.s.History(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get publishing history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(logs)
}
