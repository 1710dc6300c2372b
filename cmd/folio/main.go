package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/folio/internal/api"
	"github.com/mtlprog/folio/internal/config"
	"github.com/mtlprog/folio/internal/export"
	"github.com/mtlprog/folio/internal/metrics"
	"github.com/mtlprog/folio/internal/portfolio"
	"github.com/mtlprog/folio/internal/wealthfolio"
	"github.com/mtlprog/folio/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:           "folio",
		Usage:          "aggregation API over a Wealthfolio instance",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "portfolio",
				Usage: "print the portfolio snapshot as JSON",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Usage: "history window in days"},
					&cli.BoolFlag{Name: "pretty", Usage: "indent JSON output"},
				},
				Action: printPortfolio,
			},
			{
				Name:  "export",
				Usage: "write the portfolio snapshot to an XLSX workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file", Required: true},
				},
				Action: exportPortfolio,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func engineOptions(cfg config.Config) (portfolio.Options, error) {
	policy, err := portfolio.ParseFallbackPolicy(cfg.HoldingsFallback)
	if err != nil {
		return portfolio.Options{}, err
	}
	return portfolio.Options{
		Fallback:       policy,
		DegradeOnError: cfg.DegradeOnError,
		HistoryDays:    cfg.HistoryDays,
	}, nil
}

func serve(c *cli.Context) error {
	ctx, stop := context.WithCancel(c.Context)
	defer stop()

	cfg := config.Load()
	setupLogger(cfg)

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client := wealthfolio.NewClient(cfg.WealthfolioURL, cfg.WealthfolioAPIKey, cfg.WealthfolioTimeout,
		wealthfolio.WithObserver(m))
	portfolioSvc := portfolio.NewService(client, opts, m)

	// Readiness stays nil when probing is disabled so /readyz always reports ok.
	var readiness api.ReadinessChecker
	if cfg.ProbeInterval > 0 {
		probe := worker.NewProbeWorker(client, cfg.ProbeInterval, cfg.WealthfolioTimeout, m)
		go probe.Run(ctx)
		readiness = probe
	}

	handler := api.NewHandler(portfolioSvc, cfg.HistoryDays, cfg.AssetFilters)
	srv := api.NewServer(cfg.HTTPPort, handler, readiness, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		slog.Info("HTTP server listening",
			"port", cfg.HTTPPort,
			"upstream", cfg.WealthfolioURL,
			"holdingsFallback", opts.Fallback,
			"degradeOnError", opts.DegradeOnError,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func newService(cfg config.Config) (*portfolio.Service, error) {
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := wealthfolio.NewClient(cfg.WealthfolioURL, cfg.WealthfolioAPIKey, cfg.WealthfolioTimeout)
	return portfolio.NewService(client, opts), nil
}

func printPortfolio(c *cli.Context) error {
	cfg := config.Load()
	setupLogger(cfg)
	if days := c.Int("days"); days > 0 {
		cfg.HistoryDays = days
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	snap, err := svc.FetchPortfolioData(c.Context)
	if err != nil {
		return fmt.Errorf("fetching portfolio: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(snap)
}

func exportPortfolio(c *cli.Context) error {
	cfg := config.Load()
	setupLogger(cfg)

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	snap, err := svc.FetchPortfolioData(c.Context)
	if err != nil {
		return fmt.Errorf("fetching portfolio: %w", err)
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := export.WriteWorkbook(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	slog.Info("portfolio exported", "path", out, "accounts", len(snap.Accounts), "holdings", len(snap.Holdings))
	return nil
}
