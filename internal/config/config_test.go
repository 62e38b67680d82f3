package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL_MINUTES", "120")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("PROPOSAL_COOLDOWN", "30s")
	t.Setenv("MESSAGE_COOLDOWN", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.JWTTTLMinutes != 120 {
		t.Errorf("JWTTTLMinutes = %d, want 120", cfg.JWTTTLMinutes)
	}
	if cfg.AllowedOrigins != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %q", cfg.AllowedOrigins)
	}
	if cfg.ProposalCooldown != 30*time.Second {
		t.Errorf("ProposalCooldown = %v, want 30s", cfg.ProposalCooldown)
	}
	if cfg.MessageCooldown != 2*time.Second {
		t.Errorf("MessageCooldown = %v, want 2s", cfg.MessageCooldown)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("non numeric token ttl", func(t *testing.T) {
		t.Setenv("JWT_TTL_MINUTES", "soon")
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for a non-numeric JWT_TTL_MINUTES")
		}
	})

	t.Run("bad cooldown duration", func(t *testing.T) {
		t.Setenv("JWT_TTL_MINUTES", "60")
		t.Setenv("PROPOSAL_COOLDOWN", "whenever")
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for an unparsable PROPOSAL_COOLDOWN")
		}
	})
}
