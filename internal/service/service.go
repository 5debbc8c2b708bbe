package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/billno"
	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/ledger"
)

const (
	DateLayout     = "02/01/2006"
	defaultPerPage = 8
	maxPerPage     = 100
)

var ErrBillNotFound = errors.New("bill not found")

type ProductCatalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Lookup(ctx context.Context, code string) (domain.Product, error)
	Add(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error)
	Remove(ctx context.Context, code string) error
}

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	ledger   *ledger.Store
	catalog  ProductCatalog
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time

	// turn serializes bill issuance so numbering and append happen as one step.
	turn sync.Mutex
}

func New(ledgerStore *ledger.Store, products ProductCatalog, location *time.Location, logger *zap.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		ledger:   ledgerStore,
		catalog:  products,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) NextBillNumber() string {
	return billno.Next(s.ledger.Snapshot())
}

// IssueBill validates the draft, freezes its totals, assigns the next bill
// number and appends the record to the ledger. Storage problems never fail
// issuance; only an invalid draft does.
func (s *Service) IssueBill(ctx context.Context, draft domain.BillDraft) (domain.IssueResult, error) {
	record, err := s.compose(ctx, draft)
	if err != nil {
		return domain.IssueResult{}, err
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	record.BillNumber = billno.Next(s.ledger.Snapshot())
	record.Date = s.now().In(s.location).Format(DateLayout)
	s.ledger.Append(ctx, record)

	next := billno.Next(s.ledger.Snapshot())
	s.logger.Info("bill issued",
		zap.String("bill_no", record.BillNumber),
		zap.String("payment_mode", string(record.PaymentMode)),
		zap.String("total", record.Total.StringFixed(2)),
		zap.Int("items", len(record.LineItems)),
		zap.String("next_bill_no", next),
	)

	return domain.IssueResult{Bill: record, NextBillNumber: next}, nil
}

func (s *Service) compose(ctx context.Context, draft domain.BillDraft) (domain.BillRecord, error) {
	customer := strings.TrimSpace(draft.CustomerName)
	if customer == "" {
		return domain.BillRecord{}, fmt.Errorf("%w: customer name is required", domain.ErrInvalidBill)
	}
	mode, err := domain.ParsePaymentMode(draft.PaymentMode)
	if err != nil {
		return domain.BillRecord{}, err
	}
	if draft.Shipping.IsNegative() {
		return domain.BillRecord{}, fmt.Errorf("%w: shipping charge cannot be negative", domain.ErrInvalidBill)
	}
	if draft.Discount.IsNegative() {
		return domain.BillRecord{}, fmt.Errorf("%w: discount cannot be negative", domain.ErrInvalidBill)
	}

	items := make([]domain.LineItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		if line.Quantity <= 0 {
			continue
		}

		code := strings.TrimSpace(line.Code)
		name := strings.TrimSpace(line.Name)
		switch {
		case code != "":
			product, err := s.catalog.Lookup(ctx, code)
			if err != nil {
				return domain.BillRecord{}, err
			}
			items = append(items, domain.LineItem{Name: product.Description, Quantity: line.Quantity, UnitPrice: product.Price})
		case name != "" && line.UnitPrice != nil:
			if line.UnitPrice.IsNegative() {
				return domain.BillRecord{}, fmt.Errorf("%w: unit price cannot be negative", domain.ErrInvalidBill)
			}
			items = append(items, domain.LineItem{Name: name, Quantity: line.Quantity, UnitPrice: *line.UnitPrice})
		}
	}
	if len(items) == 0 {
		return domain.BillRecord{}, fmt.Errorf("%w: at least one product is required", domain.ErrInvalidBill)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total())
	}
	subtotal = subtotal.Round(2)
	total := subtotal.Add(draft.Shipping).Sub(draft.Discount).Round(2)
	if total.IsNegative() {
		return domain.BillRecord{}, fmt.Errorf("%w: discount exceeds bill amount", domain.ErrInvalidBill)
	}

	return domain.BillRecord{
		CustomerName:  customer,
		CustomerPhone: strings.TrimSpace(draft.CustomerPhone),
		PaymentMode:   mode,
		LineItems:     items,
		Subtotal:      subtotal,
		Discount:      draft.Discount.Round(2),
		Total:         total,
	}, nil
}

// ListBills pages through the ledger in issuance order. Pages past the end
// are clamped to the last page.
func (s *Service) ListBills(page int, perPage int) domain.BillPage {
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	records := s.ledger.Snapshot()
	total := len(records)
	totalPages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return domain.BillPage{
		Bills:      records[start:end],
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      total,
	}
}

func (s *Service) Bills() []domain.BillRecord {
	return s.ledger.Snapshot()
}

// FindBill returns the most recent record carrying billNo. Numbers repeat
// after a reset, or when a reloaded ledger already holds duplicates.
func (s *Service) FindBill(billNo string) (domain.BillRecord, error) {
	billNo = strings.ToUpper(strings.TrimSpace(billNo))
	records := s.ledger.Snapshot()
	for i := len(records) - 1; i >= 0; i-- {
		if strings.ToUpper(records[i].BillNumber) == billNo {
			return records[i], nil
		}
	}
	return domain.BillRecord{}, fmt.Errorf("%w: %s", ErrBillNotFound, billNo)
}

func (s *Service) Reload(ctx context.Context) int {
	s.turn.Lock()
	defer s.turn.Unlock()

	s.ledger.Load(ctx)
	return s.ledger.Len()
}

func (s *Service) Reset(ctx context.Context) {
	s.turn.Lock()
	defer s.turn.Unlock()

	s.ledger.Reset(ctx)
	s.logger.Warn("ledger reset")
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.List(ctx)
}

func (s *Service) AddProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	return s.catalog.Add(ctx, req)
}

func (s *Service) RemoveProduct(ctx context.Context, code string) error {
	return s.catalog.Remove(ctx, code)
}
