package models

import "time"

// Record is the evaluator's view of an inventory item: a dynamic field lookup
// plus a human-readable name for alert summaries. Field returns false when the
// record has no field with the given key; rules referencing unknown fields
// simply never match.
type Record interface {
	Field(name string) (any, bool)
	DisplayName() string
}

// HardwareItem is a single tracked hardware asset.
type HardwareItem struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	SerialNumber   string  `json:"serialNumber"`
	Status         string  `json:"status"`
	Location       string  `json:"location"`
	AssignedTo     string  `json:"assignedTo"`
	PurchaseCost   float64 `json:"purchaseCost"`
	PurchaseDate   string  `json:"purchaseDate"`
	WarrantyExpiry string  `json:"warrantyExpiry"`
}

// Field resolves rule field names against the hardware record.
func (h *HardwareItem) Field(name string) (any, bool) {
	switch name {
	case "name":
		return h.Name, true
	case "category":
		return h.Category, true
	case "serialNumber":
		return h.SerialNumber, true
	case "status":
		return h.Status, true
	case "location":
		return h.Location, true
	case "assignedTo":
		return h.AssignedTo, true
	case "purchaseCost":
		return h.PurchaseCost, true
	case "purchaseDate":
		return h.PurchaseDate, true
	case "warrantyExpiry":
		return h.WarrantyExpiry, true
	default:
		return nil, false
	}
}

// DisplayName implements Record.
func (h *HardwareItem) DisplayName() string { return h.Name }

// SoftwareItem is a licensed software asset. AssignedTo lists the users
// currently holding a seat.
type SoftwareItem struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Vendor       string   `json:"vendor"`
	Version      string   `json:"version"`
	LicenseKey   string   `json:"licenseKey"`
	SeatCount    int      `json:"seatCount"`
	AssignedTo   []string `json:"assignedTo"`
	PurchaseCost float64  `json:"purchaseCost"`
	ExpiryDate   string   `json:"expiryDate"`
}

// Field resolves rule field names against the software record. seatCount
// resolves to the raw seat total; the aggregator substitutes the derived
// available-seat count before evaluation.
func (s *SoftwareItem) Field(name string) (any, bool) {
	switch name {
	case "name":
		return s.Name, true
	case "vendor":
		return s.Vendor, true
	case "version":
		return s.Version, true
	case "licenseKey":
		return s.LicenseKey, true
	case "seatCount":
		return s.SeatCount, true
	case "purchaseCost":
		return s.PurchaseCost, true
	case "expiryDate":
		return s.ExpiryDate, true
	default:
		return nil, false
	}
}

// DisplayName implements Record.
func (s *SoftwareItem) DisplayName() string { return s.Name }

// NetworkItem is a monitored network device or service.
type NetworkItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ServiceName string `json:"serviceName"`
	IPAddress   string `json:"ipAddress"`
	DeviceType  string `json:"deviceType"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	LastSeen    string `json:"lastSeen"`
	// ZabbixItemID links the device to its history series in the
	// monitoring backend. Empty when the device is not charted.
	ZabbixItemID string `json:"zabbixItemId"`
}

// Field resolves rule field names against the network record.
func (n *NetworkItem) Field(name string) (any, bool) {
	switch name {
	case "name":
		return n.Name, true
	case "serviceName":
		return n.ServiceName, true
	case "ipAddress":
		return n.IPAddress, true
	case "deviceType":
		return n.DeviceType, true
	case "status":
		return n.Status, true
	case "location":
		return n.Location, true
	case "lastSeen":
		return n.LastSeen, true
	default:
		return nil, false
	}
}

// DisplayName implements Record. Some imported devices carry only a service
// name, so fall back to it when the device name is blank.
func (n *NetworkItem) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ServiceName
}

// AssetTimestamps carries the bookkeeping columns shared by all asset rows.
type AssetTimestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
