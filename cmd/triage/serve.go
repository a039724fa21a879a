package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/metalagman/triage/internal/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only status server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores()
			if err != nil {
				return err
			}

			app := fx.New(
				fx.NopLogger,
				fx.Supply(s),
				fx.Provide(newStatusServer),
				fx.Invoke(registerServer),
			)
			app.Run()
			s.Close()
			return nil
		},
	}
}

func newStatusServer(s *stores) *http.Server {
	srv := web.NewServer(s.items, s.tickets)
	return &http.Server{
		Addr:              s.cfg.Web.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func registerServer(lc fx.Lifecycle, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", srv.Addr).Msg("status server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("status server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
