package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/ledger-replay/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-replay/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-replay/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-replay/src/internal/adapter/repository/implementations"
	"github.com/api-sage/ledger-replay/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-replay/src/internal/adapter/stream"
	"github.com/api-sage/ledger-replay/src/internal/config"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/api-sage/ledger-replay/src/internal/usecase/services"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", err, nil)
		return 1
	}

	flags := flag.NewFlagSet("replay", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: replay [flags] <transactions.csv> > accounts.csv")
		flags.PrintDefaults()
	}
	workers := flags.Int("workers", cfg.Workers, "number of partitioned workers; 1 keeps strict input order")
	logLevel := flags.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	metricsAddr := flags.String("metrics-addr", cfg.MetricsAddr, "address for /metrics, /health and /accounts; empty disables it")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	cfg.Workers = *workers
	cfg.LogLevel = *logLevel
	cfg.MetricsAddr = *metricsAddr

	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logger.Error("configure logger", err, nil)
		return 1
	}

	path := flags.Arg(0)
	input, err := os.Open(path)
	if err != nil {
		logger.Error("open input", err, logger.Fields{"path": path})
		return 1
	}
	defer input.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts := memory.NewAccountRepository()
	transactions := memory.NewTransactionRepository()
	engine := services.NewTransactionService(accounts, transactions, services.Options{
		DisputeWithdrawals: cfg.DisputeWithdrawals,
	})

	if cfg.MetricsAddr != "" {
		srv := newOpsServer(cfg, accounts)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("operational listener stopped", err, logger.Fields{"addr": cfg.MetricsAddr})
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	reader, err := stream.NewReader(bufio.NewReader(input), func(line int, err error) {
		logger.Warn("skipping malformed row", logger.Fields{
			"path":  path,
			"line":  line,
			"error": err.Error(),
		})
	})
	if err != nil {
		logger.Error("create input reader", err, nil)
		return 1
	}

	logger.Info("replay starting", logger.Fields{
		"path":               path,
		"workers":            cfg.Workers,
		"disputeWithdrawals": cfg.DisputeWithdrawals,
	})

	ops := make(chan domain.Operation, cfg.ChannelSize)
	processor := services.NewProcessor(engine, cfg.Workers, cfg.ChannelSize)

	var summary services.Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.Stream(gctx, ops)
	})
	g.Go(func() error {
		var err error
		summary, err = processor.Run(gctx, ops)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("replay aborted", err, logger.Fields{"path": path})
		return 1
	}

	out := bufio.NewWriter(stdout)
	if err := stream.NewWriter(out).WriteAccounts(accounts.Snapshot()); err != nil {
		logger.Error("write accounts", err, nil)
		return 1
	}
	if err := out.Flush(); err != nil {
		logger.Error("flush accounts", err, nil)
		return 1
	}

	digest := reader.Digest()
	logger.Info("replay finished", logger.Fields{
		"digest":    digest,
		"processed": summary.Processed,
		"applied":   summary.Applied,
		"failed":    summary.Failed,
		"recorded":  transactions.Len(),
	})

	if cfg.ExportEnabled() {
		if err := export(ctx, cfg, accounts, digest); err != nil {
			logger.Error("export snapshot", err, logger.Fields{"digest": digest})
			return 1
		}
	}

	return 0
}

func newOpsServer(cfg config.Config, accounts *memory.AccountRepository) *http.Server {
	var auth mux.MiddlewareFunc
	if cfg.OpsAuthEnabled() {
		auth = middleware.BasicAuth(cfg.OpsUsername, cfg.OpsPassword)
	}

	return &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           router.New(controller.NewAccountController(accounts), auth),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func export(ctx context.Context, cfg config.Config, accounts *memory.AccountRepository, digest string) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout)
	defer cancel()

	db, err := implementations.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := implementations.RunMigrations(ctx, db, implementations.Migrations()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	exporter := services.NewExportService(implementations.NewSnapshotRepository(db), accounts)
	return exporter.Export(ctx, digest)
}
