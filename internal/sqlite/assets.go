package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

const (
	insertHardwareQuery = `INSERT INTO hardware_items (
    name, category, serial_number, status, location, assigned_to,
    purchase_cost, purchase_date, warranty_expiry
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

	selectHardwareBase = `SELECT
    id, name, category, serial_number, status, location, assigned_to,
    purchase_cost, purchase_date, warranty_expiry
FROM hardware_items`

	updateHardwareQuery = `UPDATE hardware_items
SET name = ?, category = ?, serial_number = ?, status = ?, location = ?,
    assigned_to = ?, purchase_cost = ?, purchase_date = ?, warranty_expiry = ?,
    updated_at = datetime('now')
WHERE id = ?`

	insertSoftwareQuery = `INSERT INTO software_items (
    name, vendor, version, license_key, seat_count, assigned_to,
    purchase_cost, expiry_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

	selectSoftwareBase = `SELECT
    id, name, vendor, version, license_key, seat_count, assigned_to,
    purchase_cost, expiry_date
FROM software_items`

	updateSoftwareQuery = `UPDATE software_items
SET name = ?, vendor = ?, version = ?, license_key = ?, seat_count = ?,
    assigned_to = ?, purchase_cost = ?, expiry_date = ?,
    updated_at = datetime('now')
WHERE id = ?`

	insertNetworkQuery = `INSERT INTO network_items (
    name, service_name, ip_address, device_type, status, location,
    last_seen, zabbix_item_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

	selectNetworkBase = `SELECT
    id, name, service_name, ip_address, device_type, status, location,
    last_seen, zabbix_item_id
FROM network_items`

	updateNetworkQuery = `UPDATE network_items
SET name = ?, service_name = ?, ip_address = ?, device_type = ?, status = ?,
    location = ?, last_seen = ?, zabbix_item_id = ?,
    updated_at = datetime('now')
WHERE id = ?`
)

// --- Hardware ---

// CreateHardwareItem inserts a hardware asset and sets its generated ID.
func (db *DB) CreateHardwareItem(ctx context.Context, item *models.HardwareItem) error {
	row := db.db.QueryRowContext(ctx, insertHardwareQuery,
		item.Name, item.Category, item.SerialNumber, item.Status, item.Location,
		item.AssignedTo, item.PurchaseCost, item.PurchaseDate, item.WarrantyExpiry,
	)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert hardware item: %w", err)
	}
	return nil
}

// GetHardwareItem retrieves a hardware asset by ID.
func (db *DB) GetHardwareItem(ctx context.Context, id int64) (*models.HardwareItem, error) {
	row := db.db.QueryRowContext(ctx, selectHardwareBase+" WHERE id = ?", id)
	return scanHardware(row)
}

// ListHardwareItems returns all hardware assets in insertion order.
func (db *DB) ListHardwareItems(ctx context.Context) ([]*models.HardwareItem, error) {
	rows, err := db.db.QueryContext(ctx, selectHardwareBase+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list hardware items: %w", err)
	}
	defer rows.Close()

	var items []*models.HardwareItem
	for rows.Next() {
		item, err := scanHardware(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hardware items: %w", err)
	}
	return items, nil
}

// UpdateHardwareItem replaces a hardware asset's fields.
func (db *DB) UpdateHardwareItem(ctx context.Context, item *models.HardwareItem) error {
	res, err := db.db.ExecContext(ctx, updateHardwareQuery,
		item.Name, item.Category, item.SerialNumber, item.Status, item.Location,
		item.AssignedTo, item.PurchaseCost, item.PurchaseDate, item.WarrantyExpiry,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hardware item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteHardwareItem removes a hardware asset.
func (db *DB) DeleteHardwareItem(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "hardware_items", id)
}

func scanHardware(row rowScanner) (*models.HardwareItem, error) {
	var item models.HardwareItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.SerialNumber, &item.Status,
		&item.Location, &item.AssignedTo, &item.PurchaseCost, &item.PurchaseDate,
		&item.WarrantyExpiry,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan hardware item: %w", err)
	}
	return &item, nil
}

// --- Software ---

// CreateSoftwareItem inserts a software asset and sets its generated ID.
func (db *DB) CreateSoftwareItem(ctx context.Context, item *models.SoftwareItem) error {
	assigned, err := json.Marshal(item.AssignedTo)
	if err != nil {
		return fmt.Errorf("failed to marshal assigned users: %w", err)
	}
	row := db.db.QueryRowContext(ctx, insertSoftwareQuery,
		item.Name, item.Vendor, item.Version, item.LicenseKey, item.SeatCount,
		string(assigned), item.PurchaseCost, item.ExpiryDate,
	)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert software item: %w", err)
	}
	return nil
}

// GetSoftwareItem retrieves a software asset by ID.
func (db *DB) GetSoftwareItem(ctx context.Context, id int64) (*models.SoftwareItem, error) {
	row := db.db.QueryRowContext(ctx, selectSoftwareBase+" WHERE id = ?", id)
	return scanSoftware(row)
}

// ListSoftwareItems returns all software assets in insertion order.
func (db *DB) ListSoftwareItems(ctx context.Context) ([]*models.SoftwareItem, error) {
	rows, err := db.db.QueryContext(ctx, selectSoftwareBase+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list software items: %w", err)
	}
	defer rows.Close()

	var items []*models.SoftwareItem
	for rows.Next() {
		item, err := scanSoftware(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating software items: %w", err)
	}
	return items, nil
}

// UpdateSoftwareItem replaces a software asset's fields.
func (db *DB) UpdateSoftwareItem(ctx context.Context, item *models.SoftwareItem) error {
	assigned, err := json.Marshal(item.AssignedTo)
	if err != nil {
		return fmt.Errorf("failed to marshal assigned users: %w", err)
	}
	res, err := db.db.ExecContext(ctx, updateSoftwareQuery,
		item.Name, item.Vendor, item.Version, item.LicenseKey, item.SeatCount,
		string(assigned), item.PurchaseCost, item.ExpiryDate,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update software item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSoftwareItem removes a software asset.
func (db *DB) DeleteSoftwareItem(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "software_items", id)
}

func scanSoftware(row rowScanner) (*models.SoftwareItem, error) {
	var (
		item     models.SoftwareItem
		assigned string
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Vendor, &item.Version, &item.LicenseKey,
		&item.SeatCount, &assigned, &item.PurchaseCost, &item.ExpiryDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan software item: %w", err)
	}
	if assigned != "" {
		if err := json.Unmarshal([]byte(assigned), &item.AssignedTo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assigned users: %w", err)
		}
	}
	return &item, nil
}

// --- Network ---

// CreateNetworkItem inserts a network asset and sets its generated ID.
func (db *DB) CreateNetworkItem(ctx context.Context, item *models.NetworkItem) error {
	row := db.db.QueryRowContext(ctx, insertNetworkQuery,
		item.Name, item.ServiceName, item.IPAddress, item.DeviceType, item.Status,
		item.Location, item.LastSeen, item.ZabbixItemID,
	)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert network item: %w", err)
	}
	return nil
}

// GetNetworkItem retrieves a network asset by ID.
func (db *DB) GetNetworkItem(ctx context.Context, id int64) (*models.NetworkItem, error) {
	row := db.db.QueryRowContext(ctx, selectNetworkBase+" WHERE id = ?", id)
	return scanNetwork(row)
}

// ListNetworkItems returns all network assets in insertion order.
func (db *DB) ListNetworkItems(ctx context.Context) ([]*models.NetworkItem, error) {
	rows, err := db.db.QueryContext(ctx, selectNetworkBase+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list network items: %w", err)
	}
	defer rows.Close()

	var items []*models.NetworkItem
	for rows.Next() {
		item, err := scanNetwork(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating network items: %w", err)
	}
	return items, nil
}

// UpdateNetworkItem replaces a network asset's fields.
func (db *DB) UpdateNetworkItem(ctx context.Context, item *models.NetworkItem) error {
	res, err := db.db.ExecContext(ctx, updateNetworkQuery,
		item.Name, item.ServiceName, item.IPAddress, item.DeviceType, item.Status,
		item.Location, item.LastSeen, item.ZabbixItemID,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update network item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteNetworkItem removes a network asset.
func (db *DB) DeleteNetworkItem(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "network_items", id)
}

func scanNetwork(row rowScanner) (*models.NetworkItem, error) {
	var item models.NetworkItem
	err := row.Scan(
		&item.ID, &item.Name, &item.ServiceName, &item.IPAddress, &item.DeviceType,
		&item.Status, &item.Location, &item.LastSeen, &item.ZabbixItemID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan network item: %w", err)
	}
	return &item, nil
}

func (db *DB) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := db.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
