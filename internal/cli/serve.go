package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/server"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    int
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the abcalc HTTP API.

The server provides:
  - Sample size and significance endpoints under /api
  - Significance of recorded experiments when a database is available
  - Health check and Prometheus metrics

Example:
  abcalc serve --port 8080
  ABCALC_TOKEN=secret abcalc serve --db ./experiments.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			opts := server.Options{
				Port:              cfg.Server.Port,
				Token:             cfg.Server.Token,
				AllowedOrigins:    cfg.Server.AllowedOrigins,
				DefaultConfidence: cfg.Confidence,
				DefaultPower:      cfg.Power,
				Logger:            root.logger,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if noStore {
				return server.New(nil, opts).Start(ctx)
			}
			return root.withStore(func(s *store.SQLiteStore) error {
				root.logger.Info("serving experiments", "db", cfg.DBPath)
				return server.New(s, opts).Start(ctx)
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&noStore, "no-db", false, "serve the calculators only, without an experiment database")

	return cmd
}

