package models

import "time"

// Module identifies which asset pool an alert definition is evaluated against.
type Module string

const (
	ModuleHardware Module = "hardware"
	ModuleSoftware Module = "software"
	ModuleNetwork  Module = "network"
)

// AlertOperator represents the comparison operator applied between a record
// field and the stored threshold.
type AlertOperator string

const (
	AlertOperatorEquals      AlertOperator = "EQUALS"
	AlertOperatorNotEquals   AlertOperator = "NOT_EQUALS"
	AlertOperatorGreaterThan AlertOperator = "GREATER_THAN"
	AlertOperatorLessThan    AlertOperator = "LESS_THAN"
	AlertOperatorGTE         AlertOperator = "GTE"
	AlertOperatorLTE         AlertOperator = "LTE"
	AlertOperatorDateBefore  AlertOperator = "DATE_BEFORE"

	// Legacy aliases kept for rules persisted before the operator set was
	// consolidated. Accepted on input and normalized at evaluation time,
	// never rewritten in storage.
	AlertOperatorValueEquals AlertOperator = "VALUE_EQUALS"
	AlertOperatorNumberBelow AlertOperator = "NUMBER_BELOW"
)

// Normalize maps legacy operator aliases onto their canonical form.
func (op AlertOperator) Normalize() AlertOperator {
	switch op {
	case AlertOperatorValueEquals:
		return AlertOperatorEquals
	case AlertOperatorNumberBelow:
		return AlertOperatorLessThan
	default:
		return op
	}
}

// AlertSeverity is a lightweight severity indicator for routing and display.
type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityHigh   AlertSeverity = "high"
)

// AlertDefinitionID uniquely identifies an alert definition.
type AlertDefinitionID int64

// AlertDefinition is a user-authored condition evaluated against one asset
// pool. Definitions are immutable once fetched; edits go through a full
// replace via the update endpoint.
type AlertDefinition struct {
	ID        AlertDefinitionID `json:"id"`
	Name      string            `json:"name"`
	Module    Module            `json:"module"`
	Field     string            `json:"field"`
	Operator  AlertOperator     `json:"operator"`
	Threshold string            `json:"threshold"`
	Severity  AlertSeverity     `json:"severity"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AlertSummary is a display-ready rollup of one definition's matches.
type AlertSummary struct {
	Definition *AlertDefinition `json:"definition"`
	Count      int              `json:"count"`
	// Items holds display names for the first few matching records.
	Items []string `json:"items"`
}

// MaxSummaryItems caps how many sample names an AlertSummary carries.
const MaxSummaryItems = 3

// CreateAlertDefinitionRequest defines the payload required to create a rule.
type CreateAlertDefinitionRequest struct {
	Name      string        `json:"name"`
	Module    Module        `json:"module"`
	Field     string        `json:"field"`
	Operator  AlertOperator `json:"operator"`
	Threshold string        `json:"threshold"`
	Severity  AlertSeverity `json:"severity"`
	Enabled   bool          `json:"enabled"`
}

// UpdateAlertDefinitionRequest replaces every editable field of a definition.
// Definitions are replaced wholesale rather than patched.
type UpdateAlertDefinitionRequest struct {
	Name      string        `json:"name"`
	Module    Module        `json:"module"`
	Field     string        `json:"field"`
	Operator  AlertOperator `json:"operator"`
	Threshold string        `json:"threshold"`
	Severity  AlertSeverity `json:"severity"`
	Enabled   bool          `json:"enabled"`
}
