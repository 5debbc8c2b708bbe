package main

import (
	"testing"

	"github.com/spsworld03/sps-bill-brew/internal/config"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "short secret", cfg: config.Config{AuthSecret: "short", OperatorUsername: "sps", OperatorPassword: "Kangayam#638"}},
		{name: "short password", cfg: config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: "abc"}},
		{name: "common password", cfg: config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: "Password"}},
		{name: "repeated", cfg: config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: "zzzzzzzz"}},
		{name: "sequential", cfg: config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: "abcdefgh"}},
		{name: "same as username", cfg: config.Config{AuthSecret: strongSecret, OperatorUsername: "counterone", OperatorPassword: "CounterOne"}},
		{name: "no username", cfg: config.Config{AuthSecret: strongSecret, OperatorPassword: "Kangayam#638"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateSecurityConfig(tt.cfg); err == nil {
				t.Fatalf("expected weak security config to be rejected")
			}
		})
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: "Kangayam#638"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidateSecurityConfigAcceptsPreHashedPassword(t *testing.T) {
	hash := "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6oFZ8u2wG6S6jEbBzk0Zk7S"
	if err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, OperatorUsername: "sps", OperatorPassword: hash}); err != nil {
		t.Fatalf("expected bcrypt hash to be accepted, got %v", err)
	}
}
