package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Rates.UpdateInterval != 30*time.Second {
		t.Errorf("Expected rate interval 30s, got %v", cfg.Rates.UpdateInterval)
	}
	if cfg.Rates.MaxDeviation != 0.10 {
		t.Errorf("Expected max deviation 0.10, got %v", cfg.Rates.MaxDeviation)
	}
	if cfg.Transfer.SettlementDelay != 2*time.Second {
		t.Errorf("Expected settlement delay 2s, got %v", cfg.Transfer.SettlementDelay)
	}
	if cfg.Transfer.PeerSuccessRate != 0.95 || cfg.Transfer.BankSuccessRate != 0.90 {
		t.Errorf("Unexpected success rates: peer=%v bank=%v", cfg.Transfer.PeerSuccessRate, cfg.Transfer.BankSuccessRate)
	}
	if cfg.Ledger.Backend != "sqlite" {
		t.Errorf("Expected sqlite backend, got %s", cfg.Ledger.Backend)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TRANSFER_SETTLEMENT_DELAY", "500ms")
	t.Setenv("LEDGER_BACKEND", "Formance")
	t.Setenv("TRANSFER_NOTE_MAX_LENGTH", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Transfer.SettlementDelay != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", cfg.Transfer.SettlementDelay)
	}
	if cfg.Ledger.Backend != "formance" {
		t.Errorf("Expected formance backend, got %s", cfg.Ledger.Backend)
	}
	if cfg.Transfer.NoteMaxLength != 60 {
		t.Errorf("Expected note max length 60, got %d", cfg.Transfer.NoteMaxLength)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"RATE_UPDATE_INTERVAL", "soon"},
		{"RATE_MAX_DEVIATION", "ten percent"},
		{"RATE_UPDATE_INTERVAL", "0s"},
		{"RATE_UPDATE_INTERVAL", "-5s"},
		{"RATE_MAX_DEVIATION", "-0.1"},
		{"RATE_MAX_DEVIATION", "1"},
		{"RATE_MAX_TICK_MOVEMENT", "1.5"},
		{"RATE_MAX_TICK_MOVEMENT", "-0.03"},
		{"TRANSFER_PEER_SUCCESS_RATE", "1.2"},
		{"TRANSFER_SETTLEMENT_DELAY", "-1s"},
		{"LEDGER_BACKEND", "postgres"},
		{"NOTIFIER", "carrier-pigeon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
