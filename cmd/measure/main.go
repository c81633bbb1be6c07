package main

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/cli"
	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/config"
	"MeasureInGoods/internal/recorder"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

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

	deps := cli.Deps{Timeout: cfg.APITimeout()}
	if cfg.API.Mock {
		deps.Fetcher = &collector.MockFetcher{Capabilities: catalog.Fallback(), Generate: true}
	} else {
		deps.Fetcher = collector.NewAPIFetcher(cfg.API.BaseURL, cfg.Proxy, cfg.APITimeout())
	}

	if cfg.Database.SQLitePath != "" {
		if _, err := os.Stat(cfg.Database.SQLitePath); err == nil {
			sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
			if err != nil {
				log.Printf("[WARN] open fetch history: %v", err)
			} else {
				defer sr.Close()
				deps.History = sr
			}
		}
	}

	return cli.Execute(os.Args[1:], deps, os.Stdout, os.Stderr)
}
