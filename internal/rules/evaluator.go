// Package rules implements the alert rule evaluation engine: a pure condition
// evaluator matching inventory records against user-authored threshold rules,
// and an aggregator producing display-ready summaries per rule.
package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// Evaluate reports whether a record matches an alert definition. It is a pure
// function of its three inputs and never fails: malformed thresholds, unknown
// fields, and unknown operators all degrade to "no match".
func Evaluate(record models.Record, def *models.AlertDefinition, today time.Time) bool {
	if record == nil || def == nil {
		return false
	}

	raw, ok := record.Field(def.Field)
	if !ok {
		raw = nil
	}

	op := def.Operator.Normalize()
	if op == models.AlertOperatorDateBefore {
		return evaluateDateBefore(raw, def.Threshold, today)
	}

	itemNum, itemIsNum := toFloat(raw)
	thresholdNum, thresholdIsNum := toFloat(def.Threshold)

	// Numeric comparison applies only when both sides parse and the field is
	// not date-like; date strings such as "2024-01-15" must stay textual.
	if itemIsNum && thresholdIsNum && !strings.Contains(strings.ToLower(def.Field), "date") {
		return compareNumbers(itemNum, thresholdNum, op)
	}

	itemStr := strings.ToLower(stringify(raw))
	thresholdStr := strings.ToLower(def.Threshold)
	return compareStrings(itemStr, thresholdStr, op)
}

// evaluateDateBefore matches values falling within the next N days: strictly
// after today, at most today+N. Absent values, unparseable dates, and
// unparseable day counts never match.
func evaluateDateBefore(raw any, threshold string, today time.Time) bool {
	value := strings.TrimSpace(stringify(raw))
	if value == "" {
		return false
	}
	itemDate, err := parseDate(value)
	if err != nil {
		return false
	}
	days, err := strconv.Atoi(strings.TrimSpace(threshold))
	if err != nil {
		return false
	}
	target := today.AddDate(0, 0, days)
	return itemDate.After(today) && !itemDate.After(target)
}

func compareNumbers(item, threshold float64, op models.AlertOperator) bool {
	switch op {
	case models.AlertOperatorEquals:
		return item == threshold
	case models.AlertOperatorNotEquals:
		return item != threshold
	case models.AlertOperatorGreaterThan:
		return item > threshold
	case models.AlertOperatorLessThan:
		return item < threshold
	case models.AlertOperatorGTE:
		return item >= threshold
	case models.AlertOperatorLTE:
		return item <= threshold
	default:
		return false
	}
}

func compareStrings(item, threshold string, op models.AlertOperator) bool {
	switch op {
	case models.AlertOperatorEquals:
		return item == threshold
	case models.AlertOperatorNotEquals:
		return item != threshold
	case models.AlertOperatorGreaterThan:
		return item > threshold
	case models.AlertOperatorLessThan:
		return item < threshold
	case models.AlertOperatorGTE:
		return item >= threshold
	case models.AlertOperatorLTE:
		return item <= threshold
	default:
		return false
	}
}

// toFloat attempts to interpret a record value as a number.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// stringify renders a record value the way it would appear to a user.
// Nil values render as the empty string so missing fields never match
// non-empty thresholds.
func stringify(raw any) string {
	if raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseDate accepts the inventory's plain date format first, then RFC 3339
// for values imported from the monitoring backend.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
