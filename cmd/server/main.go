package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/app"
	"github.com/spsworld03/sps-bill-brew/internal/config"
	"github.com/spsworld03/sps-bill-brew/internal/httpapi"
	"github.com/spsworld03/sps-bill-brew/internal/relay"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// A configured durable slot that cannot be opened is fatal; the ledger
	// never silently falls back to memory-only storage.
	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("durable slot unavailable; refusing to start", zap.String("driver", cfg.SlotDriver), zap.Error(err))
	}
	logger.Info("ledger loaded", zap.Int("records", core.Ledger.Len()), zap.String("next_bill_no", core.Service.NextBillNumber()))

	if cfg.KafkaBrokers != "" {
		r, err := relay.Dial(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Named("relay"))
		if err != nil {
			logger.Warn("kafka relay unavailable; bills will not be forwarded", zap.Error(err))
		} else {
			unsubscribe := core.Ledger.Subscribe(r.Handle)
			core.OnClose(func() error {
				unsubscribe()
				return r.Close()
			})
			logger.Info("kafka relay enabled", zap.String("topic", cfg.KafkaTopic))
		}
	}

	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.OperatorUsername, cfg.OperatorPassword)
	if err != nil {
		logger.Fatal("auth setup failed", zap.Error(err))
	}
	api := httpapi.New(core.Service, auth, cfg.AllowedOrigin, logger.Named("http"))

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("billing server listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	if err := core.Close(); err != nil {
		logger.Warn("close error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.OperatorUsername == "" {
		return fmt.Errorf("OPERATOR_USERNAME must be set")
	}
	if isBcryptHash(cfg.OperatorPassword) {
		return nil
	}
	if len(cfg.OperatorPassword) < 8 {
		return fmt.Errorf("OPERATOR_PASSWORD must be set and at least 8 characters")
	}
	if err := validatePasswordStrength(cfg.OperatorUsername, cfg.OperatorPassword); err != nil {
		return fmt.Errorf("OPERATOR_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects passwords that repeat one character, run
// sequentially (ascending or descending), match the username or appear on a
// known-weak list.
func validatePasswordStrength(username, password string) error {
	known := map[string]bool{
		"password": true, "12345678": true, "87654321": true, "qwertyui": true,
		"sps12345": true, "spsworld": true, "billing1": true, "admin123": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}
	if strings.EqualFold(password, username) {
		return fmt.Errorf("password must differ from the username")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("single repeated character not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(password); i++ {
		diff := int(password[i]) - int(password[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential password not allowed")
	}

	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
