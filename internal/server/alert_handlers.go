package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shubhamdasnadas/assetwatch/internal/core"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

func (s *Server) handleListAlertDefinitions(c *fiber.Ctx) error {
	defs, err := core.ListAlertDefinitions(c.Context(), s.sqlite, s.log)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list alert definitions", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, defs)
}

func (s *Server) handleCreateAlertDefinition(c *fiber.Ctx) error {
	var req models.CreateAlertDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	def, err := core.CreateAlertDefinition(c.Context(), s.sqlite, s.log, &req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAlertConfiguration) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create alert definition", models.GeneralErrorType)
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusCreated, def)
}

func (s *Server) handleGetAlertDefinition(c *fiber.Ctx) error {
	id, err := core.ParseAlertDefinitionID(c.Params("alertID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	def, err := core.GetAlertDefinition(c.Context(), s.sqlite, s.log, id)
	if err != nil {
		if errors.Is(err, core.ErrAlertNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert definition not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve alert definition", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, def)
}

func (s *Server) handleUpdateAlertDefinition(c *fiber.Ctx) error {
	id, err := core.ParseAlertDefinitionID(c.Params("alertID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var req models.UpdateAlertDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}

	def, err := core.UpdateAlertDefinition(c.Context(), s.sqlite, s.log, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAlertConfiguration):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		case errors.Is(err, core.ErrAlertNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert definition not found", models.NotFoundErrorType)
		default:
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to update alert definition", models.GeneralErrorType)
		}
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusOK, def)
}

func (s *Server) handleDeleteAlertDefinition(c *fiber.Ctx) error {
	id, err := core.ParseAlertDefinitionID(c.Params("alertID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	if err := core.DeleteAlertDefinition(c.Context(), s.sqlite, s.log, id); err != nil {
		if errors.Is(err, core.ErrAlertNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Alert definition not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to delete alert definition", models.GeneralErrorType)
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Alert definition deleted"})
}
