package models

// HistoryPoint is a single sample from the monitoring backend's history API.
// Clock is epoch seconds. Trigger points are event markers overlaid on the
// value series.
type HistoryPoint struct {
	Clock       int64   `json:"clock"`
	Value       float64 `json:"value"`
	Trigger     bool    `json:"is_trigger,omitempty"`
	TriggerName string  `json:"trigger_name,omitempty"`
	Severity    int     `json:"severity,omitempty"`
}
