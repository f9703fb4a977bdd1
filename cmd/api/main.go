package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/alert"
	"github.com/hamed0406/sanitycheck/internal/battery"
	"github.com/hamed0406/sanitycheck/internal/config"
	"github.com/hamed0406/sanitycheck/internal/httpapi"
	"github.com/hamed0406/sanitycheck/internal/logging"
	"github.com/hamed0406/sanitycheck/internal/notify"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/repo"
	"github.com/hamed0406/sanitycheck/internal/repo/memory"
	"github.com/hamed0406/sanitycheck/internal/repo/mysql"
	"github.com/hamed0406/sanitycheck/internal/repo/postgres"
	"github.com/hamed0406/sanitycheck/internal/repo/sqlite"
	"github.com/hamed0406/sanitycheck/internal/runner"
	"github.com/hamed0406/sanitycheck/internal/scheduler"
	"github.com/hamed0406/sanitycheck/internal/service"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Console: cfg.LogConsole})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("api_exit", zap.Error(err))
		log.Fatal(err)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, stores.close()) }()

	defs := config.DefaultBattery(cfg.BaseURL)
	if cfg.BatteryFile != "" {
		if defs, err = config.LoadBattery(cfg.BatteryFile); err != nil {
			return err
		}
	}
	specs, err := battery.Build(defs, battery.Options{ValidateTimeout: cfg.ValidateTimeout, Logger: logger})
	if err != nil {
		return fmt.Errorf("battery: %w", err)
	}

	rn := runner.New(logger, probe.NewHTTPProber(cfg.HTTPTimeout, logger), stores.results)
	svc := service.New(logger, rn, stores.results, specs)

	var notifiers notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifiers = append(notifiers, s)
	}
	if len(notifiers) > 0 {
		svc.Observer = alert.New(logger, stores.alerts, notifiers, alert.Config{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
		})
	}

	go scheduler.New(logger, svc, cfg.RunInterval, 0).Run(ctx)

	api := httpapi.NewServer(logger, svc)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(cfg.RunRPM, cfg.RunBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.StoreDriver),
		zap.Int("probes", len(specs)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("api_stopped")
	return nil
}

type stores struct {
	results repo.ResultStore
	alerts  repo.AlertStore
	close   func() error
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	nop := func() error { return nil }
	switch cfg.StoreDriver {
	case "memory":
		return &stores{results: memory.New(), alerts: memory.NewAlerts(), close: nop}, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("STORE_DRIVER=postgres requires DATABASE_URL")
		}
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return &stores{results: pg, alerts: pg, close: func() error { pg.Close(); return nil }}, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{results: s, alerts: memory.NewAlerts(), close: s.Close}, nil
	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, errors.New("STORE_DRIVER=mysql requires MYSQL_DSN")
		}
		s, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return &stores{results: s, alerts: memory.NewAlerts(), close: s.Close}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
