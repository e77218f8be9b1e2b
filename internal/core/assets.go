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
	// ErrAssetNotFound is returned when a requested inventory item does not exist.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidAsset indicates the asset payload failed validation.
	ErrInvalidAsset = errors.New("invalid asset")
)

// ParseAssetID converts a path parameter into an asset row ID.
func ParseAssetID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid asset id %q", ErrInvalidAsset, raw)
	}
	return id, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return ErrAssetNotFound
	}
	return err
}

// --- Hardware ---

// CreateHardwareItem validates and persists a new hardware asset.
func CreateHardwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, item *models.HardwareItem) (*models.HardwareItem, error) {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	item.Name = strings.TrimSpace(item.Name)
	if err := db.CreateHardwareItem(ctx, item); err != nil {
		log.Error("failed to create hardware item", "name", item.Name, "error", err)
		return nil, fmt.Errorf("failed to create hardware item: %w", err)
	}
	log.Info("hardware item created", "asset_id", item.ID)
	return item, nil
}

// GetHardwareItem retrieves one hardware asset.
func GetHardwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) (*models.HardwareItem, error) {
	item, err := db.GetHardwareItem(ctx, id)
	if err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to get hardware item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to get hardware item: %w", err)
	}
	return item, nil
}

// ListHardwareItems returns all hardware assets.
func ListHardwareItems(ctx context.Context, db *sqlite.DB, log *slog.Logger) ([]*models.HardwareItem, error) {
	items, err := db.ListHardwareItems(ctx)
	if err != nil {
		log.Error("failed to list hardware items", "error", err)
		return nil, fmt.Errorf("failed to list hardware items: %w", err)
	}
	return items, nil
}

// UpdateHardwareItem replaces an existing hardware asset.
func UpdateHardwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64, item *models.HardwareItem) (*models.HardwareItem, error) {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	item.ID = id
	item.Name = strings.TrimSpace(item.Name)
	if err := db.UpdateHardwareItem(ctx, item); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to update hardware item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to update hardware item: %w", err)
	}
	log.Info("hardware item updated", "asset_id", id)
	return item, nil
}

// DeleteHardwareItem removes a hardware asset.
func DeleteHardwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) error {
	if err := db.DeleteHardwareItem(ctx, id); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return mapped
		}
		log.Error("failed to delete hardware item", "asset_id", id, "error", err)
		return fmt.Errorf("failed to delete hardware item: %w", err)
	}
	log.Info("hardware item deleted", "asset_id", id)
	return nil
}

// --- Software ---

// CreateSoftwareItem validates and persists a new software asset.
func CreateSoftwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, item *models.SoftwareItem) (*models.SoftwareItem, error) {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	if item.SeatCount < 0 {
		return nil, fmt.Errorf("%w: seat count cannot be negative", ErrInvalidAsset)
	}
	item.Name = strings.TrimSpace(item.Name)
	if err := db.CreateSoftwareItem(ctx, item); err != nil {
		log.Error("failed to create software item", "name", item.Name, "error", err)
		return nil, fmt.Errorf("failed to create software item: %w", err)
	}
	log.Info("software item created", "asset_id", item.ID)
	return item, nil
}

// GetSoftwareItem retrieves one software asset.
func GetSoftwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) (*models.SoftwareItem, error) {
	item, err := db.GetSoftwareItem(ctx, id)
	if err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to get software item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to get software item: %w", err)
	}
	return item, nil
}

// ListSoftwareItems returns all software assets.
func ListSoftwareItems(ctx context.Context, db *sqlite.DB, log *slog.Logger) ([]*models.SoftwareItem, error) {
	items, err := db.ListSoftwareItems(ctx)
	if err != nil {
		log.Error("failed to list software items", "error", err)
		return nil, fmt.Errorf("failed to list software items: %w", err)
	}
	return items, nil
}

// UpdateSoftwareItem replaces an existing software asset.
func UpdateSoftwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64, item *models.SoftwareItem) (*models.SoftwareItem, error) {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	if item.SeatCount < 0 {
		return nil, fmt.Errorf("%w: seat count cannot be negative", ErrInvalidAsset)
	}
	item.ID = id
	item.Name = strings.TrimSpace(item.Name)
	if err := db.UpdateSoftwareItem(ctx, item); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to update software item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to update software item: %w", err)
	}
	log.Info("software item updated", "asset_id", id)
	return item, nil
}

// DeleteSoftwareItem removes a software asset.
func DeleteSoftwareItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) error {
	if err := db.DeleteSoftwareItem(ctx, id); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return mapped
		}
		log.Error("failed to delete software item", "asset_id", id, "error", err)
		return fmt.Errorf("failed to delete software item: %w", err)
	}
	log.Info("software item deleted", "asset_id", id)
	return nil
}

// --- Network ---

// CreateNetworkItem validates and persists a new network asset. A device may
// carry only a service name, so either identifier satisfies validation.
func CreateNetworkItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, item *models.NetworkItem) (*models.NetworkItem, error) {
	if item == nil || (strings.TrimSpace(item.Name) == "" && strings.TrimSpace(item.ServiceName) == "") {
		return nil, fmt.Errorf("%w: name or serviceName is required", ErrInvalidAsset)
	}
	item.Name = strings.TrimSpace(item.Name)
	item.ServiceName = strings.TrimSpace(item.ServiceName)
	if err := db.CreateNetworkItem(ctx, item); err != nil {
		log.Error("failed to create network item", "name", item.DisplayName(), "error", err)
		return nil, fmt.Errorf("failed to create network item: %w", err)
	}
	log.Info("network item created", "asset_id", item.ID)
	return item, nil
}

// GetNetworkItem retrieves one network asset.
func GetNetworkItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) (*models.NetworkItem, error) {
	item, err := db.GetNetworkItem(ctx, id)
	if err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to get network item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to get network item: %w", err)
	}
	return item, nil
}

// ListNetworkItems returns all network assets.
func ListNetworkItems(ctx context.Context, db *sqlite.DB, log *slog.Logger) ([]*models.NetworkItem, error) {
	items, err := db.ListNetworkItems(ctx)
	if err != nil {
		log.Error("failed to list network items", "error", err)
		return nil, fmt.Errorf("failed to list network items: %w", err)
	}
	return items, nil
}

// UpdateNetworkItem replaces an existing network asset.
func UpdateNetworkItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64, item *models.NetworkItem) (*models.NetworkItem, error) {
	if item == nil || (strings.TrimSpace(item.Name) == "" && strings.TrimSpace(item.ServiceName) == "") {
		return nil, fmt.Errorf("%w: name or serviceName is required", ErrInvalidAsset)
	}
	item.ID = id
	item.Name = strings.TrimSpace(item.Name)
	item.ServiceName = strings.TrimSpace(item.ServiceName)
	if err := db.UpdateNetworkItem(ctx, item); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return nil, mapped
		}
		log.Error("failed to update network item", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to update network item: %w", err)
	}
	log.Info("network item updated", "asset_id", id)
	return item, nil
}

// DeleteNetworkItem removes a network asset.
func DeleteNetworkItem(ctx context.Context, db *sqlite.DB, log *slog.Logger, id int64) error {
	if err := db.DeleteNetworkItem(ctx, id); err != nil {
		if mapped := mapStoreErr(err); mapped == ErrAssetNotFound {
			return mapped
		}
		log.Error("failed to delete network item", "asset_id", id, "error", err)
		return fmt.Errorf("failed to delete network item: %w", err)
	}
	log.Info("network item deleted", "asset_id", id)
	return nil
}
