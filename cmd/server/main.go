// Command server runs the JSON backend the invoicedesk client talks to. It
// is meant for local work and end-to-end tests.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/internal/config"
	"github.com/diewo77/invoicedesk/internal/db"
	"github.com/diewo77/invoicedesk/internal/logging"
	"github.com/diewo77/invoicedesk/internal/policy"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	// Money travels as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New(config.LogConfig{}, os.Stderr).Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("connect database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("seeding completed")
		return
	}

	if cfg.Server.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}
	if err := db.Seed(dbConn); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	issuer := auth.NewIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	routerCfg := policy.NewRouterConfig(dbConn, issuer, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(routerCfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	log.Info("server stopped gracefully")
}
