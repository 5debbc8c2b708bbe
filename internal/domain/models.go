package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidBill = errors.New("invalid bill")

type PaymentMode string

const (
	PaymentOnline  PaymentMode = "Online"
	PaymentOffline PaymentMode = "Offline"
)

// ParsePaymentMode accepts the two known modes case-insensitively. An empty
// input selects Online, the billing form's default.
func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "online":
		return PaymentOnline, nil
	case "offline":
		return PaymentOffline, nil
	default:
		return "", fmt.Errorf("%w: unknown payment mode %q", ErrInvalidBill, raw)
	}
}

type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// BillRecord is one finalized bill as it is kept in the ledger. Its JSON form
// is the durable ledger layout, so field names follow the stored slot rather
// than the Go names.
type BillRecord struct {
	BillNumber    string
	Date          string
	CustomerName  string
	CustomerPhone string
	PaymentMode   PaymentMode
	LineItems     []LineItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// Clone returns a copy that shares no memory with r.
func (r BillRecord) Clone() BillRecord {
	out := r
	if r.LineItems != nil {
		out.LineItems = make([]LineItem, len(r.LineItems))
		copy(out.LineItems, r.LineItems)
	}
	return out
}

type wireLineItem struct {
	Name  string      `json:"name"`
	Qty   int         `json:"qty"`
	Price json.Number `json:"price"`
}

type wireBillRecord struct {
	BillNo      string         `json:"billNo"`
	Date        string         `json:"date"`
	Customer    string         `json:"customer"`
	Phone       string         `json:"phone"`
	PaymentMode string         `json:"paymentMode"`
	Subtotal    json.Number    `json:"subtotal"`
	Discount    json.Number    `json:"discount"`
	Total       json.Number    `json:"total"`
	Items       []wireLineItem `json:"items"`
}

func (r BillRecord) MarshalJSON() ([]byte, error) {
	wire := wireBillRecord{
		BillNo:      r.BillNumber,
		Date:        r.Date,
		Customer:    r.CustomerName,
		Phone:       r.CustomerPhone,
		PaymentMode: string(r.PaymentMode),
		Subtotal:    Amount(r.Subtotal),
		Discount:    Amount(r.Discount),
		Total:       Amount(r.Total),
		Items:       make([]wireLineItem, 0, len(r.LineItems)),
	}
	for _, item := range r.LineItems {
		wire.Items = append(wire.Items, wireLineItem{
			Name:  item.Name,
			Qty:   item.Quantity,
			Price: Amount(item.UnitPrice),
		})
	}
	return json.Marshal(wire)
}

func (r *BillRecord) UnmarshalJSON(data []byte) error {
	var wire wireBillRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	subtotal, err := ParseAmount(wire.Subtotal)
	if err != nil {
		return fmt.Errorf("subtotal: %w", err)
	}
	discount, err := ParseAmount(wire.Discount)
	if err != nil {
		return fmt.Errorf("discount: %w", err)
	}
	total, err := ParseAmount(wire.Total)
	if err != nil {
		return fmt.Errorf("total: %w", err)
	}

	items := make([]LineItem, 0, len(wire.Items))
	for i, item := range wire.Items {
		price, err := ParseAmount(item.Price)
		if err != nil {
			return fmt.Errorf("items[%d].price: %w", i, err)
		}
		items = append(items, LineItem{Name: item.Name, Quantity: item.Qty, UnitPrice: price})
	}

	*r = BillRecord{
		BillNumber:    wire.BillNo,
		Date:          wire.Date,
		CustomerName:  wire.Customer,
		CustomerPhone: wire.Phone,
		PaymentMode:   PaymentMode(wire.PaymentMode),
		LineItems:     items,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
	}
	return nil
}

// Amount renders d as a bare JSON number.
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// ParseAmount reads a JSON number; a missing value is zero.
func ParseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

type Product struct {
	Code        string
	Description string
	Price       decimal.Decimal
	Category    string
}

type wireProduct struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireProduct{
		Code:        p.Code,
		Description: p.Description,
		Price:       Amount(p.Price),
		Category:    p.Category,
	})
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var wire wireProduct
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	price, err := ParseAmount(wire.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Product{Code: wire.Code, Description: wire.Description, Price: price, Category: wire.Category}
	return nil
}

type DraftLine struct {
	Code      string           `json:"code,omitempty"`
	Name      string           `json:"name,omitempty"`
	Quantity  int              `json:"qty"`
	UnitPrice *decimal.Decimal `json:"price,omitempty"`
}

// BillDraft is what the billing form submits. Shipping is folded into the
// total and not kept on the record.
type BillDraft struct {
	CustomerName  string          `json:"customer"`
	CustomerPhone string          `json:"phone"`
	PaymentMode   string          `json:"paymentMode"`
	Lines         []DraftLine     `json:"items"`
	Shipping      decimal.Decimal `json:"shipping"`
	Discount      decimal.Decimal `json:"discount"`
}

type IssueResult struct {
	Bill           BillRecord `json:"bill"`
	NextBillNumber string     `json:"next_bill_number"`
}

type BillPage struct {
	Bills      []BillRecord `json:"bills"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
}

type ProductCreateRequest struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}
