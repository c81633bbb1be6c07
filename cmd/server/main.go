package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/config"
	"MeasureInGoods/internal/logging"
	"MeasureInGoods/internal/page"
	"MeasureInGoods/internal/recorder"
	"MeasureInGoods/internal/scheduler"
	"MeasureInGoods/internal/selection"
	"MeasureInGoods/internal/telemetry"
	"MeasureInGoods/internal/web"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MeasureInGoods starting...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	if err := logging.Initialize(cfg.Logging.Dir); err != nil {
		log.Printf("[WARN] file logging disabled: %v", err)
	}
	defer logging.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    "measureingoods",
		ServiceVersion: version,
		Environment:    os.Getenv("ENVIRONMENT"),
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Printf("[WARN] tracing disabled: %v", err)
	} else {
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			if err := shutdownTracing(sctx); err != nil {
				log.Printf("[WARN] tracing shutdown: %v", err)
			}
		}()
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.API.Mock {
		fetcher = &collector.MockFetcher{Capabilities: catalog.Fallback(), Generate: true}
	} else {
		fetcher = collector.NewAPIFetcher(cfg.API.BaseURL, cfg.Proxy, cfg.APITimeout())
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Catalog, with an optional file override that is reloaded on change
	store := catalog.NewStore(fetcher, rec, cfg.Catalog.File)
	if cfg.Catalog.File != "" {
		go func() {
			if err := store.Watch(ctx); err != nil {
				log.Printf("[WARN] catalog watch stopped: %v", err)
			}
		}()
	}

	pages := page.NewRegistry(fetcher, rec, cfg.APITimeout(), cfg.PageIdleTTL())
	pages.SetLimit(cfg.Server.MaxPages)
	defer pages.Close()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, store, pages, cfg.Logging.Keep)
	if err := sched.RegisterAll(cfg.Schedule.CatalogCron, cfg.Schedule.RotateCron, cfg.Schedule.SweepCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.RunCatalogRefreshNow()
	sched.Start()
	defer sched.Stop()

	sessions := selection.NewSessions([]byte(cfg.Server.SessionKey), cfg.Server.SecureCookies)
	srv, err := web.New(store, pages, sessions)
	if err != nil {
		log.Fatalf("[FATAL] init web server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] MeasureInGoods is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := httpServer.Shutdown(sctx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] MeasureInGoods stopped")
}
