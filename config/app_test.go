package config

import (
	"testing"
	"time"
)

func TestBuildConfig_Defaults(t *testing.T) {
	cfg := buildConfig(newViper())
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RemoteTimeout != 20*time.Second {
		t.Errorf("RemoteTimeout = %v, want 20s", cfg.RemoteTimeout)
	}
	if cfg.CheckoutTTL != 30*time.Minute {
		t.Errorf("CheckoutTTL = %v, want 30m", cfg.CheckoutTTL)
	}
	if cfg.ElasticsearchIndex != "cafe_products" {
		t.Errorf("ElasticsearchIndex = %q", cfg.ElasticsearchIndex)
	}
}

func TestBuildConfig_Env(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://cafe.example.com/")
	t.Setenv("CHECKOUT_SKIP_PREFERENCES", "true")
	t.Setenv("REMOTE_TIMEOUT", "5s")
	cfg := buildConfig(newViper())
	if cfg.PublicURL != "https://cafe.example.com" {
		t.Errorf("PublicURL = %q, trailing slash should be trimmed", cfg.PublicURL)
	}
	if !cfg.CheckoutSkipPreferences {
		t.Error("CheckoutSkipPreferences = false, want true")
	}
	if cfg.RemoteTimeout != 5*time.Second {
		t.Errorf("RemoteTimeout = %v, want 5s", cfg.RemoteTimeout)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CAFE_TEST_VALUE", "x")
	if got := GetEnv("CAFE_TEST_VALUE", "d"); got != "x" {
		t.Errorf("GetEnv = %q, want x", got)
	}
	if got := GetEnv("CAFE_TEST_UNSET", "d"); got != "d" {
		t.Errorf("GetEnv unset = %q, want d", got)
	}
}
