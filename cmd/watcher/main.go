package main

import (
	"context"
	"log"
	"time"

	"chronikwatch/chronik"
	"chronikwatch/internal/config"
	"chronikwatch/internal/store"
	"chronikwatch/internal/watch"
	"chronikwatch/internal/watcher"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)

	opts := []chronik.Option{
		chronik.WithTimeout(time.Duration(cfg.Chronik.TimeoutSeconds) * time.Second),
	}
	if cfg.Chronik.TLS {
		opts = append(opts, chronik.WithTLS())
	}
	client := chronik.NewClient(cfg.Chronik.Host, cfg.Chronik.Port, opts...)

	w := &watcher.Watcher{
		Store:     st,
		Chronik:   client,
		Policy:    watch.ConfirmPolicy{FinalizeDepth: cfg.Watcher.FinalizeDepth},
		PageSize:  cfg.Watcher.PageSize,
		Interval:  time.Duration(cfg.Watcher.IntervalSeconds) * time.Second,
		WSEnabled: cfg.Watcher.WSEnabled,
	}

	log.Printf("watcher started (chronik=%s:%d)", cfg.Chronik.Host, cfg.Chronik.Port)
	w.Run(ctx)
}
