package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

const (
	DefaultKey      = "customProducts"
	defaultCategory = "Custom"
)

var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrDuplicateCode  = errors.New("product code already exists")
	ErrUnknownProduct = errors.New("unknown product")
	ErrBuiltinProduct = errors.New("built-in products cannot be removed")
)

func builtin(code, description string, price int64, category string) domain.Product {
	return domain.Product{Code: code, Description: description, Price: decimal.NewFromInt(price), Category: category}
}

var builtins = []domain.Product{
	builtin("TS1", "T-shirt - Basic", 250, "T-shirt"),
	builtin("TS2", "T-shirt - Premium", 275, "T-shirt"),
	builtin("TS3", "T-shirt - Deluxe", 300, "T-shirt"),

	builtin("RN1", "Round Neck T-shirt - Basic", 150, "Round Neck T-shirt"),
	builtin("RN2", "Round Neck T-shirt - Standard", 200, "Round Neck T-shirt"),
	builtin("RN3", "Round Neck T-shirt - Premium", 225, "Round Neck T-shirt"),
	builtin("RN4", "Round Neck T-shirt - Deluxe", 250, "Round Neck T-shirt"),

	builtin("S1", "Shorts - Basic", 200, "Shorts"),
	builtin("S2", "Shorts - Standard", 225, "Shorts"),
	builtin("S3", "Shorts - Premium", 250, "Shorts"),
	builtin("S4", "Shorts - Deluxe", 275, "Shorts"),
	builtin("S5", "Shorts - Ultra", 300, "Shorts"),

	builtin("T1", "Track - Basic", 250, "Track"),
	builtin("T2", "Track - Standard", 275, "Track"),
	builtin("T3", "Track - Premium", 300, "Track"),
	builtin("T4", "Track - Ultra", 400, "Track"),

	builtin("SL1", "Sleeve - Basic", 150, "Sleeve"),
	builtin("SL2", "Sleeve - Standard", 200, "Sleeve"),
	builtin("SL3", "Sleeve - Premium", 225, "Sleeve"),

	builtin("TI1", "Tights - Basic", 200, "Tights"),
	builtin("TI2", "Tights - Standard", 250, "Tights"),
	builtin("TI3", "Tights - Premium", 300, "Tights"),
	builtin("TI4", "Tights - Ultra", 350, "Tights"),
}

// Catalog is the product list the billing form picks line items from: the
// built-in shop range followed by operator-added custom products, which are
// kept as one JSON array in the durable slot.
type Catalog struct {
	mu     sync.Mutex
	slot   slot.Slot
	key    string
	logger *zap.Logger
}

func New(s slot.Slot, key string, logger *zap.Logger) *Catalog {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{slot: s, key: key, logger: logger}
}

func Builtins() []domain.Product {
	out := make([]domain.Product, len(builtins))
	copy(out, builtins)
	return out
}

// List returns the built-ins followed by the custom products. An unreadable
// or unparseable custom list is logged and left out.
func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append(Builtins(), c.customOrWarn(ctx)...), nil
}

// Lookup resolves built-in codes without reading the slot, so a storage
// outage never blocks billing with the standard range.
func (c *Catalog) Lookup(ctx context.Context, code string) (domain.Product, error) {
	code = normalizeCode(code)
	for _, p := range builtins {
		if p.Code == code {
			return p, nil
		}
	}

	c.mu.Lock()
	custom := c.customOrWarn(ctx)
	c.mu.Unlock()

	for _, p := range custom {
		if p.Code == code {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, code)
}

func (c *Catalog) Add(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	product := domain.Product{
		Code:        normalizeCode(req.Code),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
	}
	if product.Code == "" || product.Description == "" {
		return domain.Product{}, fmt.Errorf("%w: code and description are required", ErrInvalidProduct)
	}
	if !product.Price.IsPositive() {
		return domain.Product{}, fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	}
	if product.Category == "" {
		product.Category = defaultCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	custom, err := c.loadCustom(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range append(Builtins(), custom...) {
		if p.Code == product.Code {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrDuplicateCode, product.Code)
		}
	}

	if err := c.saveCustom(ctx, append(custom, product)); err != nil {
		return domain.Product{}, err
	}
	c.logger.Info("custom product added", zap.String("code", product.Code), zap.String("price", product.Price.String()))
	return product, nil
}

func (c *Catalog) Remove(ctx context.Context, code string) error {
	code = normalizeCode(code)
	for _, p := range builtins {
		if p.Code == code {
			return fmt.Errorf("%w: %s", ErrBuiltinProduct, code)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	custom, err := c.loadCustom(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.Product, 0, len(custom))
	for _, p := range custom {
		if p.Code != code {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(custom) {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, code)
	}

	if err := c.saveCustom(ctx, kept); err != nil {
		return err
	}
	c.logger.Info("custom product removed", zap.String("code", code))
	return nil
}

func (c *Catalog) loadCustom(ctx context.Context) ([]domain.Product, error) {
	if c.slot == nil {
		return nil, nil
	}
	raw, err := c.slot.Get(ctx, c.key)
	if errors.Is(err, slot.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read custom products: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("parse custom products: %w", err)
	}
	return products, nil
}

func (c *Catalog) customOrWarn(ctx context.Context) []domain.Product {
	custom, err := c.loadCustom(ctx)
	if err != nil {
		c.logger.Warn("custom products unavailable; using built-ins only", zap.String("key", c.key), zap.Error(err))
		return nil
	}
	return custom
}

func (c *Catalog) saveCustom(ctx context.Context, products []domain.Product) error {
	if c.slot == nil {
		return errors.New("no durable slot configured")
	}
	if products == nil {
		products = []domain.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	if err := c.slot.Set(ctx, c.key, string(payload)); err != nil {
		return fmt.Errorf("write custom products: %w", err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
