package seed

import (
	"errors"
	"strings"
	"testing"

	"github.com/albapepper/consumer-insights/internal/validation"
)

func TestLoadFile(t *testing.T) {
	ds, err := LoadFile("testdata/dataset.json")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(ds.Consumers) != 3 || len(ds.Products) != 3 || len(ds.Orders) != 5 {
		t.Fatalf("counts = %d/%d/%d", len(ds.Consumers), len(ds.Products), len(ds.Orders))
	}
	if ds.Orders[0].DeliveryDate == nil || ds.Orders[1].DeliveryDate != nil {
		t.Fatal("delivery dates not decoded as optional")
	}

	warnings, err := ds.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "product 9") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("testdata/nope.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"consumers": [], "customers": []}`))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestValidate_FieldConstraints(t *testing.T) {
	ds, err := Decode(strings.NewReader(`{
		"consumers": [{"id": 1, "name": "A", "registered_at": "2024-01-01T00:00:00Z"}],
		"products": [],
		"orders": [{"id": 1, "consumer_id": 1, "product_id": 1, "quantity": 0, "total_price": 5, "status": "lost", "order_date": "2024-01-02T00:00:00Z"}]
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = ds.Validate()
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want validation.Errors", err)
	}
	msg := err.Error()
	for _, want := range []string{"Dataset.Orders[0].Quantity", "Dataset.Orders[0].Status"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestValidate_References(t *testing.T) {
	ds, err := Decode(strings.NewReader(`{
		"consumers": [
			{"id": 1, "name": "A", "registered_at": "2024-01-01T00:00:00Z"},
			{"id": 1, "name": "B", "registered_at": "2024-01-01T00:00:00Z"}
		],
		"products": [{"id": 1, "name": "P", "price": 1, "category": "Books"}],
		"orders": [
			{"id": 7, "consumer_id": 2, "product_id": 1, "quantity": 1, "total_price": 5, "status": "pending", "order_date": "2024-01-02T00:00:00Z"},
			{"id": 7, "consumer_id": 1, "product_id": 1, "quantity": 1, "total_price": 5, "status": "pending", "order_date": "2024-01-02T00:00:00Z"}
		]
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = ds.Validate()
	if err == nil {
		t.Fatal("expected reference errors")
	}
	for _, want := range []string{"duplicate consumer id 1", "duplicate order id 7", "order 7 references unknown consumer 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestSeedResult(t *testing.T) {
	var r SeedResult
	r.Add(SeedResult{ConsumersUpserted: 2, OrdersUpserted: 5})
	r.Add(SeedResult{ProductsUpserted: 3, ConsumersReconciled: 1, Warnings: []string{"w"}})
	r.AddWarningf("order %d odd", 9)
	want := "consumers=2 products=3 orders=5 reconciled=1 warnings=2"
	if got := r.Summary(); got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
}
