package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nappylocks/client-sdk/internal/gateway"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local gateway HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := gateway.NewRouter(a.sessions, a.cart, a.client, a.log)

			errCh := make(chan error, 1)
			go func() {
				if err := e.Start(a.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			a.log.Info().Str("addr", a.cfg.ListenAddr).Msg("gateway listening")

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
