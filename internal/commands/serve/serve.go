// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serve implements the serve command.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tombee/polls/internal/backend"
	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/commands/shared"
	"github.com/tombee/polls/internal/config"
	"github.com/tombee/polls/internal/log"
	"github.com/tombee/polls/internal/metrics"
	"github.com/tombee/polls/internal/server"
	"github.com/tombee/polls/internal/tracing"
	"github.com/tombee/polls/internal/web"
)

type options struct {
	addr        string
	backend     string
	sqlitePath  string
	postgresURL string

	// onReady is called with the bound address once the listener is up.
	onReady func(addr string)
}

// NewCommand creates the serve command.
func NewCommand() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the polls web application",
		Long: `Start the HTTP server for the polls index and detail pages.

Endpoints:
  GET /polls/        published questions, newest first
  GET /polls/{id}/   a single published question
  GET /healthz       liveness and store connectivity
  GET /version       build information
  GET /metrics       Prometheus metrics

Flags override the config file and environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (e.g., 127.0.0.1:8000)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Storage backend: memory, sqlite or postgres")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite database file")
	cmd.Flags().StringVar(&opts.postgresURL, "postgres-url", "", "PostgreSQL connection URL")

	return cmd
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend.Type = opts.backend
	}
	if cmd.Flags().Changed("sqlite-path") {
		cfg.Backend.SQLite.Path = opts.sqlitePath
	}
	if cmd.Flags().Changed("postgres-url") {
		cfg.Backend.Postgres.ConnectionString = opts.postgresURL
	}
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return &shared.ExitError{Code: shared.ExitUsage, Message: "invalid flags", Cause: err}
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logger := log.New(logCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, c, b := shared.GetVersion()

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: v,
		SampleRate:     cfg.Tracing.SampleRate,
		Output:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to flush spans", log.Error(err))
		}
	}()

	store, err := backend.Open(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("store opened", slog.String("backend", cfg.Backend.Type))

	router, err := web.NewRouter(web.RouterConfig{
		Reader:    store,
		Clock:     clock.System{},
		Logger:    logger,
		Metrics:   metrics.New(),
		Version:   v,
		Commit:    c,
		BuildDate: b,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := server.New(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case <-srv.Ready():
		if opts.onReady != nil {
			opts.onReady(srv.Addr())
		}
	case err := <-errCh:
		return err
	}
	return <-errCh
}
