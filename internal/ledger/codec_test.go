package ledger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

func TestEncodeUsesDurableLayout(t *testing.T) {
	payload, err := Encode([]domain.BillRecord{sampleBill(1)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("payload is not a JSON array of objects: %v", err)
	}
	entry := raw[0]
	for _, field := range []string{"billNo", "date", "customer", "phone", "paymentMode", "subtotal", "discount", "total", "items"} {
		if _, ok := entry[field]; !ok {
			t.Fatalf("missing field %q in %s", field, payload)
		}
	}
	if _, ok := entry["total"].(float64); !ok {
		t.Fatalf("expected total as JSON number, got %T", entry["total"])
	}
	item := entry["items"].([]any)[0].(map[string]any)
	if item["qty"].(float64) != 2 || item["price"].(float64) != 250 || item["name"] != "T-shirt - Basic" {
		t.Fatalf("unexpected item encoding %v", item)
	}
}

func TestEncodeEmptyLedger(t *testing.T) {
	payload, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(payload) != "[]" {
		t.Fatalf("expected [], got %s", payload)
	}
}

func TestDecodeBrowserWrittenLedger(t *testing.T) {
	payload := `[
		{"billNo":"SPS01","date":"05/03/2025","customer":"Ravi","phone":"","paymentMode":"Offline",
		 "subtotal":525,"discount":25.5,"total":549.5,
		 "items":[{"name":"T-shirt - Premium","qty":1,"price":275},{"name":"Shorts - Ultra","qty":1,"price":250}]}
	]`

	records, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.PaymentMode != domain.PaymentOffline || got.CustomerName != "Ravi" {
		t.Fatalf("unexpected header %+v", got)
	}
	if !got.Total.Equal(decimal.RequireFromString("549.5")) {
		t.Fatalf("unexpected total %s", got.Total)
	}
	if len(got.LineItems) != 2 || !got.LineItems[1].UnitPrice.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected items %+v", got.LineItems)
	}
}

func TestDecodeRejectsNonArray(t *testing.T) {
	for _, payload := range []string{"", "  ", "null", `{"billNo":"SPS01"}`, `"SPS01"`} {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrNotArray) {
			t.Fatalf("Decode(%q): expected ErrNotArray, got %v", payload, err)
		}
	}
}

func TestDecodeRejectsNullRecords(t *testing.T) {
	for _, payload := range []string{`[null]`, `[{"billNo":"SPS05"},null]`, `[{"billNo":"SPS05"}, null ]`} {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrNullRecord) {
			t.Fatalf("Decode(%q): expected ErrNullRecord, got %v", payload, err)
		}
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	records, err := Decode([]byte("[]"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil ledger, got %#v", records)
	}
}
