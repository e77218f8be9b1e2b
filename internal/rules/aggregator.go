package rules

import (
	"time"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// seatAvailabilityRecord substitutes the derived available-seat count for the
// raw seatCount field. License rules alert on seats remaining, not seats
// purchased.
type seatAvailabilityRecord struct {
	*models.SoftwareItem
}

func (r seatAvailabilityRecord) Field(name string) (any, bool) {
	if name == "seatCount" {
		return r.SeatCount - len(r.AssignedTo), true
	}
	return r.SoftwareItem.Field(name)
}

// Aggregate evaluates every enabled definition against its module's pool and
// returns one summary per definition with at least one match. Output order
// follows definition order; no re-sorting by severity or count, so repeated
// calls over the same inputs are deterministic.
func Aggregate(
	defs []*models.AlertDefinition,
	hardware []*models.HardwareItem,
	software []*models.SoftwareItem,
	network []*models.NetworkItem,
	today time.Time,
) []models.AlertSummary {
	var summaries []models.AlertSummary

	for _, def := range defs {
		if def == nil || !def.Enabled {
			continue
		}

		pool := poolFor(def, hardware, software, network)
		if pool == nil {
			continue
		}

		count := 0
		var items []string
		for _, record := range pool {
			if !Evaluate(record, def, today) {
				continue
			}
			count++
			if len(items) < models.MaxSummaryItems {
				items = append(items, record.DisplayName())
			}
		}

		if count > 0 {
			summaries = append(summaries, models.AlertSummary{
				Definition: def,
				Count:      count,
				Items:      items,
			})
		}
	}

	return summaries
}

func poolFor(
	def *models.AlertDefinition,
	hardware []*models.HardwareItem,
	software []*models.SoftwareItem,
	network []*models.NetworkItem,
) []models.Record {
	switch def.Module {
	case models.ModuleHardware:
		pool := make([]models.Record, 0, len(hardware))
		for _, item := range hardware {
			pool = append(pool, item)
		}
		return pool
	case models.ModuleSoftware:
		pool := make([]models.Record, 0, len(software))
		for _, item := range software {
			if def.Field == "seatCount" {
				pool = append(pool, seatAvailabilityRecord{item})
			} else {
				pool = append(pool, item)
			}
		}
		return pool
	case models.ModuleNetwork:
		pool := make([]models.Record, 0, len(network))
		for _, item := range network {
			pool = append(pool, item)
		}
		return pool
	default:
		return nil
	}
}
