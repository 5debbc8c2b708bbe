package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spsworld03/sps-bill-brew/internal/catalog"
	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/ledger"
	"github.com/spsworld03/sps-bill-brew/internal/slot/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Slot) {
	t.Helper()
	s := memory.New()
	store := ledger.New(s, ledger.DefaultKey, nil)
	svc := New(store, catalog.New(s, catalog.DefaultKey, nil), time.UTC, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.October, 18, 23, 30, 0, 0, time.UTC)
	}
	return svc, s
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func basicDraft() domain.BillDraft {
	return domain.BillDraft{
		CustomerName:  "  Ravi Kumar ",
		CustomerPhone: "9698786494",
		PaymentMode:   "offline",
		Lines: []domain.DraftLine{
			{Code: "ts2", Quantity: 2},
			{Code: "S5", Quantity: 1},
		},
		Shipping: decimal.NewFromInt(40),
		Discount: decimal.NewFromInt(50),
	}
}

func TestIssueBillComputesAndFreezesTotals(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.IssueBill(context.Background(), basicDraft())
	if err != nil {
		t.Fatalf("issue bill failed: %v", err)
	}

	bill := result.Bill
	if bill.BillNumber != "SPS01" {
		t.Fatalf("expected SPS01, got %s", bill.BillNumber)
	}
	if result.NextBillNumber != "SPS02" {
		t.Fatalf("expected next SPS02, got %s", result.NextBillNumber)
	}
	if bill.CustomerName != "Ravi Kumar" || bill.PaymentMode != domain.PaymentOffline {
		t.Fatalf("unexpected header %+v", bill)
	}
	if bill.Date != "18/10/2026" {
		t.Fatalf("unexpected date %s", bill.Date)
	}
	if !bill.Subtotal.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("expected subtotal 850, got %s", bill.Subtotal)
	}
	if !bill.Total.Equal(decimal.NewFromInt(840)) {
		t.Fatalf("expected total 840 (850 + 40 shipping - 50 discount), got %s", bill.Total)
	}
	if len(bill.LineItems) != 2 || bill.LineItems[0].Name != "T-shirt - Premium" {
		t.Fatalf("unexpected items %+v", bill.LineItems)
	}
}

func TestIssueBillUsesConfiguredLocationForDate(t *testing.T) {
	svc, _ := newTestService(t)
	loc := time.FixedZone("IST", 5*3600+1800)
	svc.location = loc

	result, err := svc.IssueBill(context.Background(), basicDraft())
	if err != nil {
		t.Fatalf("issue bill failed: %v", err)
	}
	if result.Bill.Date != "19/10/2026" {
		t.Fatalf("expected next-day date in IST, got %s", result.Bill.Date)
	}
}

func TestIssueBillNumbersAreSequential(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var last domain.IssueResult
	for i := 0; i < 10; i++ {
		result, err := svc.IssueBill(ctx, basicDraft())
		if err != nil {
			t.Fatalf("issue %d failed: %v", i, err)
		}
		last = result
	}
	if last.Bill.BillNumber != "SPS10" || last.NextBillNumber != "SPS11" {
		t.Fatalf("unexpected numbering %s -> %s", last.Bill.BillNumber, last.NextBillNumber)
	}
	if svc.NextBillNumber() != "SPS11" {
		t.Fatalf("expected preview SPS11, got %s", svc.NextBillNumber())
	}
}

func TestIssueBillContinuesFromLoadedLedger(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	if _, err := svc.IssueBill(ctx, basicDraft()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	restarted := New(ledger.New(s, ledger.DefaultKey, nil), catalog.New(s, "", nil), time.UTC, nil)
	if restarted.NextBillNumber() != "SPS01" {
		t.Fatalf("expected SPS01 before load, got %s", restarted.NextBillNumber())
	}
	if count := restarted.Reload(ctx); count != 1 {
		t.Fatalf("expected 1 record after reload, got %d", count)
	}
	result, err := restarted.IssueBill(ctx, basicDraft())
	if err != nil {
		t.Fatalf("issue after restart: %v", err)
	}
	if result.Bill.BillNumber != "SPS02" {
		t.Fatalf("expected SPS02 after restart, got %s", result.Bill.BillNumber)
	}
}

func TestIssueBillDoesNotFailOnStorageFailure(t *testing.T) {
	svc, s := newTestService(t)
	s.FailWrites(true)

	result, err := svc.IssueBill(context.Background(), domain.BillDraft{
		CustomerName: "Walk-in",
		Lines:        []domain.DraftLine{{Name: "Socks", Quantity: 3, UnitPrice: price("45.50")}},
	})
	if err != nil {
		t.Fatalf("expected issuance to succeed despite storage failure, got %v", err)
	}
	if !result.Bill.Total.Equal(decimal.RequireFromString("136.5")) {
		t.Fatalf("unexpected total %s", result.Bill.Total)
	}
	if len(svc.Bills()) != 1 {
		t.Fatalf("expected bill kept in memory")
	}
}

func TestIssueBillWithBuiltinCodesDuringCatalogOutage(t *testing.T) {
	svc, s := newTestService(t)
	s.FailReads(true)

	result, err := svc.IssueBill(context.Background(), basicDraft())
	if err != nil {
		t.Fatalf("expected issuance with built-in codes while the slot is unreadable, got %v", err)
	}
	if result.Bill.BillNumber != "SPS01" || !result.Bill.Subtotal.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("unexpected bill %+v", result.Bill)
	}
}

func TestIssueBillWithCorruptCustomProducts(t *testing.T) {
	svc, s := newTestService(t)
	if err := s.Set(context.Background(), catalog.DefaultKey, "{corrupt"); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	result, err := svc.IssueBill(context.Background(), basicDraft())
	if err != nil {
		t.Fatalf("expected issuance despite corrupt custom products, got %v", err)
	}
	if !result.Bill.Total.Equal(decimal.NewFromInt(840)) {
		t.Fatalf("unexpected total %s", result.Bill.Total)
	}
	if len(svc.Bills()) != 1 {
		t.Fatalf("expected the bill in the ledger")
	}
}

func TestIssueBillValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.BillDraft
		want  error
	}{
		{
			name:  "missing customer",
			draft: domain.BillDraft{CustomerName: "  ", Lines: []domain.DraftLine{{Code: "TS1", Quantity: 1}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "no usable lines",
			draft: domain.BillDraft{CustomerName: "A", Lines: []domain.DraftLine{{Code: "TS1", Quantity: 0}, {Quantity: 2}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "unknown payment mode",
			draft: domain.BillDraft{CustomerName: "A", PaymentMode: "cheque", Lines: []domain.DraftLine{{Code: "TS1", Quantity: 1}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "negative discount",
			draft: domain.BillDraft{CustomerName: "A", Discount: decimal.NewFromInt(-1), Lines: []domain.DraftLine{{Code: "TS1", Quantity: 1}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "discount above amount",
			draft: domain.BillDraft{CustomerName: "A", Discount: decimal.NewFromInt(1000), Lines: []domain.DraftLine{{Code: "TS1", Quantity: 1}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "negative price",
			draft: domain.BillDraft{CustomerName: "A", Lines: []domain.DraftLine{{Name: "X", Quantity: 1, UnitPrice: price("-5")}}},
			want:  domain.ErrInvalidBill,
		},
		{
			name:  "unknown product code",
			draft: domain.BillDraft{CustomerName: "A", Lines: []domain.DraftLine{{Code: "ZZ9", Quantity: 1}}},
			want:  catalog.ErrUnknownProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.IssueBill(context.Background(), tt.draft)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(svc.Bills()) != 0 {
				t.Fatalf("invalid draft must not reach the ledger")
			}
		})
	}
}

func TestIssueBillDefaultsToOnline(t *testing.T) {
	svc, _ := newTestService(t)
	result, err := svc.IssueBill(context.Background(), domain.BillDraft{
		CustomerName: "A",
		Lines:        []domain.DraftLine{{Code: "RN1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if result.Bill.PaymentMode != domain.PaymentOnline {
		t.Fatalf("expected Online, got %s", result.Bill.PaymentMode)
	}
}

func TestListBillsPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 19; i++ {
		if _, err := svc.IssueBill(ctx, basicDraft()); err != nil {
			t.Fatalf("issue: %v", err)
		}
	}

	first := svc.ListBills(1, 0)
	if first.PerPage != 8 || first.TotalPages != 3 || first.Total != 19 || len(first.Bills) != 8 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Bills[0].BillNumber != "SPS01" {
		t.Fatalf("expected issuance order, got %s first", first.Bills[0].BillNumber)
	}

	last := svc.ListBills(99, 8)
	if last.Page != 3 || len(last.Bills) != 3 || last.Bills[2].BillNumber != "SPS19" {
		t.Fatalf("unexpected last page %+v", last)
	}
}

func TestListBillsEmptyLedger(t *testing.T) {
	svc, _ := newTestService(t)
	page := svc.ListBills(3, 8)
	if page.Page != 3 && page.Page != 1 {
		t.Fatalf("unexpected page %d", page.Page)
	}
	if page.Total != 0 || page.TotalPages != 0 || len(page.Bills) != 0 {
		t.Fatalf("unexpected empty page %+v", page)
	}
}

func TestFindBill(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.IssueBill(ctx, basicDraft()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.FindBill("sps01"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, err := svc.FindBill("SPS02"); !errors.Is(err, ErrBillNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindBillReturnsLatestDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	svc.ledger.Replace([]domain.BillRecord{
		{BillNumber: "SPS01", CustomerName: "Anu"},
		{BillNumber: "SPS02", CustomerName: "Bala"},
		{BillNumber: "SPS01", CustomerName: "Ravi"},
	})

	got, err := svc.FindBill("SPS01")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.CustomerName != "Ravi" {
		t.Fatalf("expected latest SPS01, got %+v", got)
	}
}

func TestResetStartsNumberingOver(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.IssueBill(ctx, basicDraft()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.Reset(ctx)
	if svc.NextBillNumber() != "SPS01" {
		t.Fatalf("expected SPS01 after reset, got %s", svc.NextBillNumber())
	}
	if svc.Reload(ctx) != 0 {
		t.Fatalf("expected empty durable slot after reset")
	}
}

func TestActorContext(t *testing.T) {
	ctx := WithActor(context.Background(), domain.Actor{Username: "sps", Role: "operator"})
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Username != "sps" {
		t.Fatalf("expected actor in context, got %+v", actor)
	}
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatalf("expected no actor in bare context")
	}
}
