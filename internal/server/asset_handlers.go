package server

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/shubhamdasnadas/assetwatch/internal/core"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

func parseModule(c *fiber.Ctx) (models.Module, error) {
	module := models.Module(c.Params("module"))
	switch module {
	case models.ModuleHardware, models.ModuleSoftware, models.ModuleNetwork:
		return module, nil
	default:
		return "", fmt.Errorf("unknown module %q", c.Params("module"))
	}
}

func (s *Server) handleListAssets(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var data any
	switch module {
	case models.ModuleHardware:
		data, err = core.ListHardwareItems(c.Context(), s.sqlite, s.log)
	case models.ModuleSoftware:
		data, err = core.ListSoftwareItems(c.Context(), s.sqlite, s.log)
	case models.ModuleNetwork:
		data, err = core.ListNetworkItems(c.Context(), s.sqlite, s.log)
	}
	if err != nil {
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to list assets", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, data)
}

func (s *Server) handleCreateAsset(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var data any
	switch module {
	case models.ModuleHardware:
		var item models.HardwareItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.CreateHardwareItem(c.Context(), s.sqlite, s.log, &item)
	case models.ModuleSoftware:
		var item models.SoftwareItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.CreateSoftwareItem(c.Context(), s.sqlite, s.log, &item)
	case models.ModuleNetwork:
		var item models.NetworkItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.CreateNetworkItem(c.Context(), s.sqlite, s.log, &item)
	}
	if err != nil {
		if errors.Is(err, core.ErrInvalidAsset) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create asset", models.GeneralErrorType)
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusCreated, data)
}

func (s *Server) handleGetAsset(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}
	id, err := core.ParseAssetID(c.Params("assetID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var data any
	switch module {
	case models.ModuleHardware:
		data, err = core.GetHardwareItem(c.Context(), s.sqlite, s.log, id)
	case models.ModuleSoftware:
		data, err = core.GetSoftwareItem(c.Context(), s.sqlite, s.log, id)
	case models.ModuleNetwork:
		data, err = core.GetNetworkItem(c.Context(), s.sqlite, s.log, id)
	}
	if err != nil {
		if errors.Is(err, core.ErrAssetNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Asset not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to retrieve asset", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, data)
}

func (s *Server) handleUpdateAsset(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}
	id, err := core.ParseAssetID(c.Params("assetID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var data any
	switch module {
	case models.ModuleHardware:
		var item models.HardwareItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.UpdateHardwareItem(c.Context(), s.sqlite, s.log, id, &item)
	case models.ModuleSoftware:
		var item models.SoftwareItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.UpdateSoftwareItem(c.Context(), s.sqlite, s.log, id, &item)
	case models.ModuleNetwork:
		var item models.NetworkItem
		if err := c.BodyParser(&item); err != nil {
			return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
		}
		data, err = core.UpdateNetworkItem(c.Context(), s.sqlite, s.log, id, &item)
	}
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAsset):
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		case errors.Is(err, core.ErrAssetNotFound):
			return SendErrorWithType(c, fiber.StatusNotFound, "Asset not found", models.NotFoundErrorType)
		default:
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to update asset", models.GeneralErrorType)
		}
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusOK, data)
}

func (s *Server) handleDeleteAsset(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}
	id, err := core.ParseAssetID(c.Params("assetID"))
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	switch module {
	case models.ModuleHardware:
		err = core.DeleteHardwareItem(c.Context(), s.sqlite, s.log, id)
	case models.ModuleSoftware:
		err = core.DeleteSoftwareItem(c.Context(), s.sqlite, s.log, id)
	case models.ModuleNetwork:
		err = core.DeleteNetworkItem(c.Context(), s.sqlite, s.log, id)
	}
	if err != nil {
		if errors.Is(err, core.ErrAssetNotFound) {
			return SendErrorWithType(c, fiber.StatusNotFound, "Asset not found", models.NotFoundErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to delete asset", models.GeneralErrorType)
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Asset deleted"})
}

func (s *Server) handleExportAssets(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	var buf bytes.Buffer
	if err := core.ExportAssetsCSV(c.Context(), s.sqlite, s.log, module, &buf); err != nil {
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to export assets", models.GeneralErrorType)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s_assets.csv", module))
	return c.Send(buf.Bytes())
}

func (s *Server) handleImportAssets(c *fiber.Ctx) error {
	module, err := parseModule(c)
	if err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	body := c.Body()
	if len(body) == 0 {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Request body is empty", models.ValidationErrorType)
	}

	count, err := core.ImportAssetsCSV(c.Context(), s.sqlite, s.log, module, bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, core.ErrInvalidCSV) || errors.Is(err, core.ErrInvalidAsset) {
			return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
		}
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to import assets", models.GeneralErrorType)
	}
	s.dashboard.Invalidate()
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"imported": count})
}
