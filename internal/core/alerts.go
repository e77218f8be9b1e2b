// Package core implements the business logic between the HTTP layer and
// storage: alert definition management, asset management, dashboard
// aggregation, and CSV import/export.
package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shubhamdasnadas/assetwatch/internal/sqlite"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

var (
	// ErrAlertNotFound is returned when an alert definition cannot be located.
	ErrAlertNotFound = errors.New("alert definition not found")
	// ErrInvalidAlertConfiguration indicates the request payload failed validation.
	ErrInvalidAlertConfiguration = errors.New("invalid alert configuration")
)

// validOperators includes the legacy aliases: definitions written by older
// clients still carry them, and they keep evaluating through Normalize.
var validOperators = map[models.AlertOperator]struct{}{
	models.AlertOperatorEquals:      {},
	models.AlertOperatorNotEquals:   {},
	models.AlertOperatorGreaterThan: {},
	models.AlertOperatorLessThan:    {},
	models.AlertOperatorGTE:         {},
	models.AlertOperatorLTE:         {},
	models.AlertOperatorDateBefore:  {},
	models.AlertOperatorValueEquals: {},
	models.AlertOperatorNumberBelow: {},
}

var validModules = map[models.Module]struct{}{
	models.ModuleHardware: {},
	models.ModuleSoftware: {},
	models.ModuleNetwork:  {},
}

var validSeverities = map[models.AlertSeverity]struct{}{
	models.AlertSeverityLow:    {},
	models.AlertSeverityMedium: {},
	models.AlertSeverityHigh:   {},
}

func validateAlertRequest(name string, module models.Module, field string, operator models.AlertOperator, severity models.AlertSeverity) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, ok := validModules[module]; !ok {
		return fmt.Errorf("invalid module %q", module)
	}
	if strings.TrimSpace(field) == "" {
		return fmt.Errorf("field is required")
	}
	if _, ok := validOperators[operator]; !ok {
		return fmt.Errorf("invalid operator %q", operator)
	}
	if _, ok := validSeverities[severity]; !ok {
		return fmt.Errorf("invalid severity %q", severity)
	}
	return nil
}

// ParseAlertDefinitionID converts a path parameter into a definition ID.
func ParseAlertDefinitionID(raw string) (models.AlertDefinitionID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid alert definition id %q", ErrInvalidAlertConfiguration, raw)
	}
	return models.AlertDefinitionID(id), nil
}

// CreateAlertDefinition validates and persists a new rule.
func CreateAlertDefinition(ctx context.Context, db *sqlite.DB, log *slog.Logger, req *models.CreateAlertDefinitionRequest) (*models.AlertDefinition, error) {
	if req == nil {
		return nil, ErrInvalidAlertConfiguration
	}
	if err := validateAlertRequest(req.Name, req.Module, req.Field, req.Operator, req.Severity); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlertConfiguration, err)
	}

	def := &models.AlertDefinition{
		Name:      strings.TrimSpace(req.Name),
		Module:    req.Module,
		Field:     strings.TrimSpace(req.Field),
		Operator:  req.Operator,
		Threshold: strings.TrimSpace(req.Threshold),
		Severity:  req.Severity,
		Enabled:   req.Enabled,
	}
	if err := db.CreateAlertDefinition(ctx, def); err != nil {
		log.Error("failed to create alert definition", "name", def.Name, "error", err)
		return nil, fmt.Errorf("failed to create alert definition: %w", err)
	}
	log.Info("alert definition created", "alert_id", def.ID, "module", def.Module)
	return def, nil
}

// GetAlertDefinition retrieves a single rule by ID.
func GetAlertDefinition(ctx context.Context, db *sqlite.DB, log *slog.Logger, id models.AlertDefinitionID) (*models.AlertDefinition, error) {
	def, err := db.GetAlertDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		log.Error("failed to get alert definition", "alert_id", id, "error", err)
		return nil, fmt.Errorf("failed to get alert definition: %w", err)
	}
	return def, nil
}

// ListAlertDefinitions returns all rules in creation order.
func ListAlertDefinitions(ctx context.Context, db *sqlite.DB, log *slog.Logger) ([]*models.AlertDefinition, error) {
	defs, err := db.ListAlertDefinitions(ctx)
	if err != nil {
		log.Error("failed to list alert definitions", "error", err)
		return nil, fmt.Errorf("failed to list alert definitions: %w", err)
	}
	return defs, nil
}

// UpdateAlertDefinition replaces every editable field of an existing rule.
// Definitions are replaced wholesale, not patched.
func UpdateAlertDefinition(ctx context.Context, db *sqlite.DB, log *slog.Logger, id models.AlertDefinitionID, req *models.UpdateAlertDefinitionRequest) (*models.AlertDefinition, error) {
	if req == nil {
		return nil, ErrInvalidAlertConfiguration
	}
	if err := validateAlertRequest(req.Name, req.Module, req.Field, req.Operator, req.Severity); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlertConfiguration, err)
	}

	existing, err := db.GetAlertDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		log.Error("failed to load alert definition for update", "alert_id", id, "error", err)
		return nil, fmt.Errorf("failed to load alert definition: %w", err)
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Module = req.Module
	existing.Field = strings.TrimSpace(req.Field)
	existing.Operator = req.Operator
	existing.Threshold = strings.TrimSpace(req.Threshold)
	existing.Severity = req.Severity
	existing.Enabled = req.Enabled

	if err := db.UpdateAlertDefinition(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		log.Error("failed to update alert definition", "alert_id", id, "error", err)
		return nil, fmt.Errorf("failed to update alert definition: %w", err)
	}
	log.Info("alert definition updated", "alert_id", id)
	return existing, nil
}

// DeleteAlertDefinition removes a rule.
func DeleteAlertDefinition(ctx context.Context, db *sqlite.DB, log *slog.Logger, id models.AlertDefinitionID) error {
	if err := db.DeleteAlertDefinition(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlertNotFound
		}
		log.Error("failed to delete alert definition", "alert_id", id, "error", err)
		return fmt.Errorf("failed to delete alert definition: %w", err)
	}
	log.Info("alert definition deleted", "alert_id", id)
	return nil
}
