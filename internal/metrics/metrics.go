// Package metrics exposes the service's Prometheus counters via
// VictoriaMetrics' lightweight metrics library.
package metrics

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

var (
	dashboardRenders = metrics.NewCounter("assetwatch_dashboard_renders_total")

	historyFetches     = metrics.NewCounter("assetwatch_history_fetches_total")
	historyFetchErrors = metrics.NewCounter("assetwatch_history_fetch_errors_total")
	historySessions    = metrics.NewCounter("assetwatch_history_sessions_opened_total")
)

// IncDashboardRender counts one aggregation pass over the asset pools.
func IncDashboardRender() { dashboardRenders.Inc() }

// IncRuleMatches counts matched records per module.
func IncRuleMatches(module string, n int) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`assetwatch_rule_matches_total{module=%q}`, module)).Add(n)
}

// IncHistoryFetch counts one history range request against the backend.
func IncHistoryFetch() { historyFetches.Inc() }

// IncHistoryFetchError counts one failed history range request.
func IncHistoryFetchError() { historyFetchErrors.Inc() }

// IncHistorySession counts one opened chart session.
func IncHistorySession() { historySessions.Inc() }

// WritePrometheus renders all registered metrics in Prometheus text format.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
