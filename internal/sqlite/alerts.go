package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

const (
	insertAlertDefinitionQuery = `INSERT INTO alert_definitions (
    name,
    module,
    field,
    operator,
    threshold,
    severity,
    enabled
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, created_at, updated_at`

	selectAlertDefinitionBase = `SELECT
    id,
    name,
    module,
    field,
    operator,
    threshold,
    severity,
    enabled,
    created_at,
    updated_at
FROM alert_definitions`

	updateAlertDefinitionQuery = `UPDATE alert_definitions
SET name = ?,
    module = ?,
    field = ?,
    operator = ?,
    threshold = ?,
    severity = ?,
    enabled = ?,
    updated_at = datetime('now')
WHERE id = ?`

	deleteAlertDefinitionQuery = `DELETE FROM alert_definitions WHERE id = ?`
)

// CreateAlertDefinition inserts a new rule and fills in the generated fields.
func (db *DB) CreateAlertDefinition(ctx context.Context, def *models.AlertDefinition) error {
	if def == nil {
		return fmt.Errorf("alert definition payload is required")
	}

	row := db.db.QueryRowContext(ctx, insertAlertDefinitionQuery,
		def.Name,
		string(def.Module),
		def.Field,
		string(def.Operator),
		def.Threshold,
		string(def.Severity),
		boolToInt(def.Enabled),
	)

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to insert alert definition: %w", err)
	}
	def.ID = models.AlertDefinitionID(id)
	def.CreatedAt = createdAt
	def.UpdatedAt = updatedAt
	return nil
}

// GetAlertDefinition retrieves a rule by its identifier.
func (db *DB) GetAlertDefinition(ctx context.Context, id models.AlertDefinitionID) (*models.AlertDefinition, error) {
	row := db.db.QueryRowContext(ctx, selectAlertDefinitionBase+" WHERE id = ?", int64(id))
	return scanAlertDefinition(row)
}

// ListAlertDefinitions returns all rules in insertion order. Evaluation and
// dashboard output depend on this ordering staying stable.
func (db *DB) ListAlertDefinitions(ctx context.Context) ([]*models.AlertDefinition, error) {
	rows, err := db.db.QueryContext(ctx, selectAlertDefinitionBase+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list alert definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.AlertDefinition
	for rows.Next() {
		def, err := scanAlertDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert definitions: %w", err)
	}
	return defs, nil
}

// UpdateAlertDefinition replaces every editable field of an existing rule.
func (db *DB) UpdateAlertDefinition(ctx context.Context, def *models.AlertDefinition) error {
	if def == nil {
		return fmt.Errorf("alert definition payload is required")
	}

	res, err := db.db.ExecContext(ctx, updateAlertDefinitionQuery,
		def.Name,
		string(def.Module),
		def.Field,
		string(def.Operator),
		def.Threshold,
		string(def.Severity),
		boolToInt(def.Enabled),
		int64(def.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update alert definition: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAlertDefinition removes a rule.
func (db *DB) DeleteAlertDefinition(ctx context.Context, id models.AlertDefinitionID) error {
	res, err := db.db.ExecContext(ctx, deleteAlertDefinitionQuery, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete alert definition: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlertDefinition(row rowScanner) (*models.AlertDefinition, error) {
	var (
		def      models.AlertDefinition
		module   string
		operator string
		severity string
		enabled  int
	)
	err := row.Scan(
		&def.ID,
		&def.Name,
		&module,
		&def.Field,
		&operator,
		&def.Threshold,
		&severity,
		&enabled,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan alert definition: %w", err)
	}
	def.Module = models.Module(module)
	def.Operator = models.AlertOperator(operator)
	def.Severity = models.AlertSeverity(severity)
	def.Enabled = enabled != 0
	return &def, nil
}
