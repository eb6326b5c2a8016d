package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/api"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operations over HTTP for a UI host",
		Long: `Expose every operation as POST /invoke/<command> with a JSON body of
arguments. Replies are {"ok":true,"data":...} or {"ok":false,"error":"..."}.

Example:
  finance serve --addr 127.0.0.1:8000
  curl -d '{"symbol":"aapl"}' localhost:8000/invoke/add_stock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = rc.Config().API.Addr
			}

			svc, err := rc.Service()
			if err != nil {
				return err
			}
			hs := api.NewHTTPServer(addr, api.NewServer(svc, rc.logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				rc.logger.Info().Str("addr", addr).Str("db", svc.DBPath()).Msg("serving")
				errc <- hs.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			rc.logger.Info().Msg("shutting down")
			return hs.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	return cmd
}
