package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/scribely/content-api/internal/service"
	"github.com/scribely/content-api/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{s: service}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	outcome, err := h.s.Generate(c.Context(), userID, &req)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(outcome)
}

func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	if contentID != 0 {
		record, err := h.s.Info(c.Context(), userID, int64(contentID))
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": "Unable to get content",
			})
		}
		return c.Status(fiber.StatusOK).JSON(record)
	}

	records, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

func (h *ContentHandler) PublishContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	err := h.s.MarkPublished(c.Context(), userID, int64(contentID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to update content",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContentHandler) RemoveContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	contentID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(contentID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to remove content",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
