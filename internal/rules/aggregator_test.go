package rules

import (
	"reflect"
	"testing"

	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

func TestAggregateSkipsDisabledDefinitions(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	hardware := []*models.HardwareItem{{Name: "srv-01", Status: "Active"}}
	disabled := def("status", models.AlertOperatorEquals, "Active")
	disabled.Enabled = false

	summaries := Aggregate([]*models.AlertDefinition{disabled}, hardware, nil, nil, today)
	if len(summaries) != 0 {
		t.Fatalf("expected no summaries for disabled rule, got %d", len(summaries))
	}
}

func TestAggregateSeatCountDerivation(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	software := []*models.SoftwareItem{
		{
			Name:       "CAD Suite",
			SeatCount:  10,
			AssignedTo: []string{"a", "b", "c", "d", "e"},
		},
	}
	rule := def("seatCount", models.AlertOperatorLessThan, "3")
	rule.Module = models.ModuleSoftware

	// 10 seats, 5 assigned: available = 5, not below 3.
	summaries := Aggregate([]*models.AlertDefinition{rule}, nil, software, nil, today)
	if len(summaries) != 0 {
		t.Fatalf("available=5 should not match threshold 3, got %d summaries", len(summaries))
	}

	// 8 assigned: available = 2, below 3.
	software[0].AssignedTo = []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	summaries = Aggregate([]*models.AlertDefinition{rule}, nil, software, nil, today)
	if len(summaries) != 1 {
		t.Fatalf("available=2 should match threshold 3, got %d summaries", len(summaries))
	}
	if summaries[0].Count != 1 {
		t.Errorf("Count = %d, want 1", summaries[0].Count)
	}
}

func TestAggregateSummaryShape(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	hardware := []*models.HardwareItem{
		{Name: "srv-01", Status: "Retired"},
		{Name: "srv-02", Status: "Retired"},
		{Name: "srv-03", Status: "Retired"},
		{Name: "srv-04", Status: "Retired"},
	}
	rule := def("status", models.AlertOperatorEquals, "Retired")

	summaries := Aggregate([]*models.AlertDefinition{rule}, hardware, nil, nil, today)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	got := summaries[0]
	if got.Count != 4 {
		t.Errorf("Count = %d, want 4", got.Count)
	}
	wantItems := []string{"srv-01", "srv-02", "srv-03"}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("Items = %v, want first 3 names %v", got.Items, wantItems)
	}
}

func TestAggregatePreservesDefinitionOrder(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	hardware := []*models.HardwareItem{{Name: "srv-01", Status: "Active", PurchaseCost: 900}}

	costRule := def("purchaseCost", models.AlertOperatorGreaterThan, "100")
	costRule.Name = "expensive"
	costRule.Severity = models.AlertSeverityLow
	statusRule := def("status", models.AlertOperatorEquals, "Active")
	statusRule.Name = "active"
	statusRule.Severity = models.AlertSeverityHigh

	// Lower-severity rule first: output must keep definition order, not
	// re-sort by severity.
	summaries := Aggregate([]*models.AlertDefinition{costRule, statusRule}, hardware, nil, nil, today)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Definition.Name != "expensive" || summaries[1].Definition.Name != "active" {
		t.Errorf("summaries out of definition order: %q, %q",
			summaries[0].Definition.Name, summaries[1].Definition.Name)
	}
}

func TestAggregateNetworkNameFallback(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	network := []*models.NetworkItem{
		{ServiceName: "edge-dns", Status: "down"},
	}
	rule := def("status", models.AlertOperatorEquals, "down")
	rule.Module = models.ModuleNetwork

	summaries := Aggregate([]*models.AlertDefinition{rule}, nil, nil, network, today)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if len(summaries[0].Items) != 1 || summaries[0].Items[0] != "edge-dns" {
		t.Errorf("Items = %v, want serviceName fallback [edge-dns]", summaries[0].Items)
	}
}

func TestAggregateEmptyMatchesOmitted(t *testing.T) {
	today := mustDate(t, "2024-01-01")
	hardware := []*models.HardwareItem{{Name: "srv-01", Status: "Active"}}
	rule := def("status", models.AlertOperatorEquals, "Retired")

	summaries := Aggregate([]*models.AlertDefinition{rule}, hardware, nil, nil, today)
	if len(summaries) != 0 {
		t.Fatalf("rules with no matches must not emit summaries, got %d", len(summaries))
	}
}
