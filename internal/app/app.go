package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pricepulse/storefront/internal/config"
	"github.com/pricepulse/storefront/internal/logging"
)

// Run bootstraps the storefront CLI and dispatches the requested command.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	deps, err := buildDependencies(cfg, logger)
	if err != nil {
		return err
	}

	command, rest := args[0], args[1:]
	handler, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	return handler(ctx, deps, rest)
}

const usage = `expected a command:
  health, signup, login, logout, me, verify-email, resend-verification,
  forgot-password, reset-password, profile-update,
  products, product, categories,
  cart, cart-add, cart-update, cart-remove, cart-clear,
  wishlist, wishlist-add, wishlist-remove, wishlist-clear, wishlist-check, wishlist-count,
  vendor-create`

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
