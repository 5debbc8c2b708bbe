// Package app opens the durable slot selected by configuration and builds
// the ledger, catalog and service on top of it.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/catalog"
	"github.com/spsworld03/sps-bill-brew/internal/config"
	"github.com/spsworld03/sps-bill-brew/internal/ledger"
	"github.com/spsworld03/sps-bill-brew/internal/service"
	"github.com/spsworld03/sps-bill-brew/internal/slot"
	"github.com/spsworld03/sps-bill-brew/internal/slot/memory"
	"github.com/spsworld03/sps-bill-brew/internal/slot/mongo"
	"github.com/spsworld03/sps-bill-brew/internal/slot/postgres"
	"github.com/spsworld03/sps-bill-brew/internal/slot/redis"
	"github.com/spsworld03/sps-bill-brew/internal/slot/sqlite"
)

var ErrUnknownDriver = errors.New("unknown slot driver")

type App struct {
	Slot    slot.Slot
	Ledger  *ledger.Store
	Catalog *catalog.Catalog
	Service *service.Service

	closers []func() error
}

// OpenSlot connects the configured backend. The returned close function is
// never nil.
func OpenSlot(ctx context.Context, cfg config.Config) (slot.Slot, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SlotDriver {
	case "memory":
		return memory.New(), noop, nil
	case "", "sqlite":
		s, err := sqlite.New(ctx, cfg.SlotDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.New(ctx, cfg.SlotDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "redis":
		s := redis.New(cfg.SlotDSN, cfg.RedisPassword, cfg.RedisDB, cfg.SlotNamespace)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return s, s.Close, nil
	case "mongo":
		s, err := mongo.New(ctx, cfg.SlotDSN, cfg.SlotNamespace)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.SlotDriver)
	}
}

// Open builds the whole billing core and loads the ledger from the slot.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s, closeSlot, err := OpenSlot(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s slot: %w", cfg.SlotDriver, err)
	}
	logger.Info("durable slot opened", zap.String("driver", cfg.SlotDriver))

	store := ledger.New(s, cfg.LedgerKey, logger.Named("ledger"))
	store.Load(ctx)

	products := catalog.New(s, cfg.CatalogKey, logger.Named("catalog"))
	svc := service.New(store, products, cfg.Location(), logger.Named("service"))

	return &App{
		Slot:    s,
		Ledger:  store,
		Catalog: products,
		Service: svc,
		closers: []func() error{closeSlot},
	}, nil
}

// OnClose registers fn to run, in reverse order, when the app is closed.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
