package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}
	if cfg.TTL != time.Hour {
		t.Errorf("expected TTL to be 1 hour, got %v", cfg.TTL)
	}
	if cfg.DefaultSliding != 10*time.Minute {
		t.Errorf("expected DefaultSliding to be 10 minutes, got %v", cfg.DefaultSliding)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"negative shards", func(c *Config) { c.NumShards = -1 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{"negative eviction interval", func(c *Config) { c.EvictionInterval = -time.Second }, "EvictionInterval"},
		{"sliding beyond ttl", func(c *Config) { c.DefaultSliding = 2 * time.Hour }, "DefaultSliding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %s, got %v", tt.field, err)
			}
		})
	}
}

func TestConfig_DefaultSettings(t *testing.T) {
	s := DefaultConfig().DefaultSettings()
	if s.CancelCaching {
		t.Error("default settings should cache")
	}
	if s.Expiration != SlidingExpiration(10*time.Minute) {
		t.Errorf("unexpected expiration %v", s.Expiration)
	}
}

func TestConfig_ValidateSettings(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		s       Settings
		wantTTL bool
		wantErr bool
	}{
		{"sliding within ttl", Settings{Expiration: SlidingExpiration(cfg.TTL)}, false, false},
		{"no expiration", Settings{}, false, false},
		{"absolute deadline", Settings{Expiration: AbsoluteExpiration(time.Now().Add(48 * time.Hour))}, false, false},
		{"sliding beyond ttl", Settings{Expiration: SlidingExpiration(cfg.TTL + time.Second)}, true, true},
		{"incomplete sliding", Settings{Expiration: Expiration{Kind: ExpireSliding}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.ValidateSettings(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrExceedsTTL) != tt.wantTTL {
				t.Errorf("expected ErrExceedsTTL=%v, got %v", tt.wantTTL, err)
			}
		})
	}
}
