package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shubhamdasnadas/assetwatch/internal/sqlite"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

// ErrInvalidCSV indicates an import file that cannot be parsed or whose
// header does not match the module's expected columns.
var ErrInvalidCSV = fmt.Errorf("invalid csv payload")

var (
	hardwareCSVHeader = []string{"name", "category", "serialNumber", "status", "location", "assignedTo", "purchaseCost", "purchaseDate", "warrantyExpiry"}
	softwareCSVHeader = []string{"name", "vendor", "version", "licenseKey", "seatCount", "assignedTo", "purchaseCost", "expiryDate"}
	networkCSVHeader  = []string{"name", "serviceName", "ipAddress", "deviceType", "status", "location", "lastSeen", "zabbixItemId"}
)

// ExportAssetsCSV writes the module's full pool as CSV to w.
func ExportAssetsCSV(ctx context.Context, db *sqlite.DB, log *slog.Logger, module models.Module, w io.Writer) error {
	cw := csv.NewWriter(w)
	switch module {
	case models.ModuleHardware:
		items, err := ListHardwareItems(ctx, db, log)
		if err != nil {
			return err
		}
		if err := cw.Write(hardwareCSVHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, item := range items {
			row := []string{
				item.Name, item.Category, item.SerialNumber, item.Status,
				item.Location, item.AssignedTo,
				strconv.FormatFloat(item.PurchaseCost, 'f', -1, 64),
				item.PurchaseDate, item.WarrantyExpiry,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	case models.ModuleSoftware:
		items, err := ListSoftwareItems(ctx, db, log)
		if err != nil {
			return err
		}
		if err := cw.Write(softwareCSVHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, item := range items {
			row := []string{
				item.Name, item.Vendor, item.Version, item.LicenseKey,
				strconv.Itoa(item.SeatCount),
				strings.Join(item.AssignedTo, ";"),
				strconv.FormatFloat(item.PurchaseCost, 'f', -1, 64),
				item.ExpiryDate,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	case models.ModuleNetwork:
		items, err := ListNetworkItems(ctx, db, log)
		if err != nil {
			return err
		}
		if err := cw.Write(networkCSVHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, item := range items {
			row := []string{
				item.Name, item.ServiceName, item.IPAddress, item.DeviceType,
				item.Status, item.Location, item.LastSeen, item.ZabbixItemID,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown module %q", ErrInvalidAsset, module)
	}
	cw.Flush()
	return cw.Error()
}

// ImportAssetsCSV reads a CSV export and inserts every row as a new asset.
// Returns the number of rows imported. The whole file is parsed before any
// insert happens, so a malformed row rejects the entire import.
func ImportAssetsCSV(ctx context.Context, db *sqlite.DB, log *slog.Logger, module models.Module, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}

	switch module {
	case models.ModuleHardware:
		return importHardwareRows(ctx, db, log, records)
	case models.ModuleSoftware:
		return importSoftwareRows(ctx, db, log, records)
	case models.ModuleNetwork:
		return importNetworkRows(ctx, db, log, records)
	default:
		return 0, fmt.Errorf("%w: unknown module %q", ErrInvalidAsset, module)
	}
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidCSV, len(want), len(got))
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), want[i]) {
			return fmt.Errorf("%w: expected column %q at position %d, got %q", ErrInvalidCSV, want[i], i, got[i])
		}
	}
	return nil
}

func parseCost(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid cost %q", ErrInvalidCSV, raw)
	}
	return v, nil
}

func importHardwareRows(ctx context.Context, db *sqlite.DB, log *slog.Logger, records [][]string) (int, error) {
	if err := checkHeader(records[0], hardwareCSVHeader); err != nil {
		return 0, err
	}

	items := make([]*models.HardwareItem, 0, len(records)-1)
	for i, row := range records[1:] {
		cost, err := parseCost(row[6])
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, &models.HardwareItem{
			Name:           strings.TrimSpace(row[0]),
			Category:       row[1],
			SerialNumber:   row[2],
			Status:         row[3],
			Location:       row[4],
			AssignedTo:     row[5],
			PurchaseCost:   cost,
			PurchaseDate:   row[7],
			WarrantyExpiry: row[8],
		})
	}
	for _, item := range items {
		if _, err := CreateHardwareItem(ctx, db, log, item); err != nil {
			return 0, err
		}
	}
	log.Info("hardware csv imported", "rows", len(items))
	return len(items), nil
}

func importSoftwareRows(ctx context.Context, db *sqlite.DB, log *slog.Logger, records [][]string) (int, error) {
	if err := checkHeader(records[0], softwareCSVHeader); err != nil {
		return 0, err
	}

	items := make([]*models.SoftwareItem, 0, len(records)-1)
	for i, row := range records[1:] {
		seats := 0
		if s := strings.TrimSpace(row[4]); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("row %d: %w: invalid seat count %q", i+2, ErrInvalidCSV, row[4])
			}
			seats = v
		}
		cost, err := parseCost(row[6])
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		var assigned []string
		if s := strings.TrimSpace(row[5]); s != "" {
			assigned = strings.Split(s, ";")
		}
		items = append(items, &models.SoftwareItem{
			Name:         strings.TrimSpace(row[0]),
			Vendor:       row[1],
			Version:      row[2],
			LicenseKey:   row[3],
			SeatCount:    seats,
			AssignedTo:   assigned,
			PurchaseCost: cost,
			ExpiryDate:   row[7],
		})
	}
	for _, item := range items {
		if _, err := CreateSoftwareItem(ctx, db, log, item); err != nil {
			return 0, err
		}
	}
	log.Info("software csv imported", "rows", len(items))
	return len(items), nil
}

func importNetworkRows(ctx context.Context, db *sqlite.DB, log *slog.Logger, records [][]string) (int, error) {
	if err := checkHeader(records[0], networkCSVHeader); err != nil {
		return 0, err
	}

	items := make([]*models.NetworkItem, 0, len(records)-1)
	for _, row := range records[1:] {
		items = append(items, &models.NetworkItem{
			Name:         strings.TrimSpace(row[0]),
			ServiceName:  strings.TrimSpace(row[1]),
			IPAddress:    row[2],
			DeviceType:   row[3],
			Status:       row[4],
			Location:     row[5],
			LastSeen:     row[6],
			ZabbixItemID: row[7],
		})
	}
	for _, item := range items {
		if _, err := CreateNetworkItem(ctx, db, log, item); err != nil {
			return 0, err
		}
	}
	log.Info("network csv imported", "rows", len(items))
	return len(items), nil
}
