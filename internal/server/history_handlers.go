package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

type openSessionRequest struct {
	ItemID string `json:"item_id"`
}

func (s *Server) handleOpenHistorySession(c *fiber.Ctx) error {
	var req openSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.ItemID == "" {
		return SendErrorWithType(c, fiber.StatusBadRequest, "item_id is required", models.ValidationErrorType)
	}

	id := s.sessions.Open(req.ItemID)
	return SendSuccess(c, fiber.StatusCreated, fiber.Map{"session_id": id})
}

func (s *Server) handleHistorySnapshot(c *fiber.Ctx) error {
	snap, err := s.sessions.Snapshot(c.Params("sessionID"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "History session not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to read session", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, snap)
}

func (s *Server) handleRefreshHistorySession(c *fiber.Ctx) error {
	if err := s.sessions.Refresh(c.Params("sessionID")); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "History session not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to refresh session", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Session refreshed"})
}

func (s *Server) handleCloseHistorySession(c *fiber.Ctx) error {
	if err := s.sessions.Close(c.Params("sessionID")); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "History session not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to close session", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Session closed"})
}
