package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

func (s *Server) handleDashboardAlerts(c *fiber.Ctx) error {
	summaries, err := s.dashboard.Summaries(c.Context())
	if err != nil {
		s.log.Error("failed to aggregate dashboard alerts", "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to aggregate alerts", models.GeneralErrorType)
	}
	// An empty rollup renders as an empty list, not null.
	if summaries == nil {
		summaries = []models.AlertSummary{}
	}
	return SendSuccess(c, fiber.StatusOK, summaries)
}
