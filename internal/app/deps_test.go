package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/pricepulse/storefront/internal/config"
)

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		APIURL:         "http://localhost:3000",
		APITimeout:     time.Second,
		RefreshTimeout: time.Second,
		DataDir:        t.TempDir(),
		RateLimit:      5,
		RateBurst:      5,
	}

	deps, err := buildDependencies(cfg, slog.Default())
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}

	if deps.Store == nil || deps.API == nil || deps.Account == nil {
		t.Fatalf("expected fully wired dependencies: %+v", deps)
	}
	if deps.API.BaseURL() != "http://localhost:3000" {
		t.Fatalf("unexpected base URL %q", deps.API.BaseURL())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
