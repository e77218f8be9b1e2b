package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/shubhamdasnadas/assetwatch/internal/metrics"
	"github.com/shubhamdasnadas/assetwatch/internal/rules"
	"github.com/shubhamdasnadas/assetwatch/internal/sqlite"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

const dashboardCacheKey = "dashboard"

// Dashboard evaluates alert definitions against the asset pools and caches
// the result briefly so dashboard polling does not hammer the database.
type Dashboard struct {
	db    *sqlite.DB
	log   *slog.Logger
	cache *gocache.Cache
}

// NewDashboard creates a dashboard aggregator with the given cache TTL.
// A non-positive TTL disables caching.
func NewDashboard(db *sqlite.DB, log *slog.Logger, ttl time.Duration) *Dashboard {
	var c *gocache.Cache
	if ttl > 0 {
		c = gocache.New(ttl, 2*ttl)
	}
	return &Dashboard{
		db:    db,
		log:   log.With("component", "dashboard"),
		cache: c,
	}
}

// Summaries returns the active alert rollups in definition order.
func (d *Dashboard) Summaries(ctx context.Context) ([]models.AlertSummary, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Get(dashboardCacheKey); ok {
			return cached.([]models.AlertSummary), nil
		}
	}

	defs, err := d.db.ListAlertDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert definitions: %w", err)
	}
	hardware, err := d.db.ListHardwareItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hardware pool: %w", err)
	}
	software, err := d.db.ListSoftwareItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load software pool: %w", err)
	}
	network, err := d.db.ListNetworkItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load network pool: %w", err)
	}

	// Date comparisons resolve against the current UTC day so that a rule's
	// outcome is stable for the whole day regardless of request time.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	summaries := rules.Aggregate(defs, hardware, software, network, today)

	metrics.IncDashboardRender()
	for _, s := range summaries {
		metrics.IncRuleMatches(string(s.Definition.Module), s.Count)
	}
	d.log.Debug("dashboard aggregated",
		"definitions", len(defs), "active_alerts", len(summaries))

	if d.cache != nil {
		d.cache.Set(dashboardCacheKey, summaries, gocache.DefaultExpiration)
	}
	return summaries, nil
}

// Invalidate drops the cached rollup. Called after any write to assets or
// alert definitions so the next dashboard read reflects the change.
func (d *Dashboard) Invalidate() {
	if d.cache != nil {
		d.cache.Delete(dashboardCacheKey)
	}
}
