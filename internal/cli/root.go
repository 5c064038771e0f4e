// Package cli implements the nappylocks command-line front-end. Every
// command runs against the same core the gateway server uses: the session
// and cart stores, hydrated from persisted state before any command body
// executes.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nappylocks/client-sdk/internal/core/ports"
	"github.com/nappylocks/client-sdk/internal/core/service"
	"github.com/nappylocks/client-sdk/internal/gateway/metrics"
	"github.com/nappylocks/client-sdk/internal/infrastructure/api"
	"github.com/nappylocks/client-sdk/internal/infrastructure/config"
	"github.com/nappylocks/client-sdk/internal/infrastructure/storage"
	"github.com/nappylocks/client-sdk/pkg/logger"

	"github.com/rs/zerolog"
)

// app carries the wired core shared by all commands. It is built once in the
// root command's PersistentPreRunE; tests construct their own instances.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	client   *api.Client
	sessions *service.SessionService
	cart     *service.CartService
}

// NewRootCmd creates the nappylocks root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nappylocks",
		Short:         "NappyLocks salon platform client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bootstrap(cmd.Context())
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newResetPasswordCmd(a),
		newProfileCmd(a),
		newCartCmd(a),
		newServeCmd(a),
	)
	return root
}

// bootstrap wires config, logging, storage, the remote API client and both
// stores, then hydrates persisted state. Commands only run once hydration
// has completed, so every read they make is trustworthy.
func (a *app) bootstrap(ctx context.Context) error {
	a.cfg = config.Load()
	a.log = logger.Init(logger.Options{
		Level:  a.cfg.LogLevel,
		Pretty: a.cfg.Env == "development",
	})

	store, err := a.buildStorage(ctx)
	if err != nil {
		return err
	}

	a.client = api.NewClient(a.cfg.APIBaseURL, api.WithLogger(a.log))
	a.sessions = service.NewSessionService(a.client, store, a.log)
	a.cart = service.NewCartService(store, a.log)

	start := time.Now()
	a.sessions.Hydrate(ctx)
	a.cart.Hydrate(ctx)
	metrics.HydrationDuration.Observe(time.Since(start).Seconds())

	return nil
}

func (a *app) buildStorage(ctx context.Context) (ports.StateStorage, error) {
	var store ports.StateStorage

	switch a.cfg.StorageBackend {
	case "redis":
		client, err := storage.ConnectRedis(ctx, storage.RedisConfig{
			Addr: a.cfg.Redis.Addr,
			DB:   a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect state storage: %w", err)
		}
		store = storage.NewRedis(client)
	case "file", "":
		dir := a.cfg.StateDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve state dir: %w", err)
			}
			dir = filepath.Join(home, ".nappylocks")
		}
		fileStore, err := storage.NewFile(dir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.StorageBackend)
	}

	if a.cfg.StateSecret != "" {
		sealed, err := storage.NewSealed(store, a.cfg.StateSecret)
		if err != nil {
			return nil, err
		}
		store = sealed
	}
	return store, nil
}
