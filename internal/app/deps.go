package app

import (
	"log/slog"
	"net/http"

	"github.com/pricepulse/storefront/internal/account"
	"github.com/pricepulse/storefront/internal/api"
	"github.com/pricepulse/storefront/internal/config"
	"github.com/pricepulse/storefront/internal/credentials"
	"github.com/pricepulse/storefront/internal/session"
)

// Dependencies holds the wired client stack used by every command.
type Dependencies struct {
	Store   credentials.Store
	API     *api.Client
	Account *account.Service
}

// buildDependencies wires the credential store, session transport, and typed
// API clients. The transport is shared by every client so the single-flight
// refresh guarantee holds application-wide.
func buildDependencies(cfg config.Config, logger *slog.Logger) (Dependencies, error) {
	store, err := credentials.NewFileStore(cfg.DataDir)
	if err != nil {
		return Dependencies{}, err
	}

	transport := session.NewTransport(store, cfg.APIURL+"/auth/refresh-token",
		session.WithRefreshTimeout(cfg.RefreshTimeout),
		session.WithTerminationCallback(func(err error) {
			logger.Warn("session terminated, sign in again", "error", err)
		}),
	)

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.APITimeout,
	}

	client := api.New(cfg.APIURL, httpClient, cfg.RateLimit, cfg.RateBurst)

	return Dependencies{
		Store:   store,
		API:     client,
		Account: account.NewService(client, store),
	}, nil
}
