package history

import "github.com/shubhamdasnadas/assetwatch/pkg/models"

// Downsample reduces a chronological point slice to at most maxPoints for
// rendering. Sequences already within the budget are returned unchanged,
// which also makes repeated application a no-op. The true last point is
// always preserved so the chart's right edge never drifts.
func Downsample(points []models.HistoryPoint, maxPoints int) []models.HistoryPoint {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}

	step := (len(points) + maxPoints - 1) / maxPoints
	out := make([]models.HistoryPoint, 0, maxPoints+1)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}

	last := points[len(points)-1]
	if out[len(out)-1].Clock != last.Clock {
		out = append(out, last)
	}
	return out
}
