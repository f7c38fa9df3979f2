package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chronikwatch/chronik"
	"chronikwatch/internal/api"
	"chronikwatch/internal/config"
	"chronikwatch/internal/store"
	"chronikwatch/internal/wallet"
	"chronikwatch/internal/watch"
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
	watchSvc := watch.Service{
		Store:   st,
		Deriver: wallet.AddressDeriver{XPub: cfg.Wallet.XPub},
	}

	opts := []chronik.Option{
		chronik.WithTimeout(time.Duration(cfg.Chronik.TimeoutSeconds) * time.Second),
	}
	if cfg.Chronik.TLS {
		opts = append(opts, chronik.WithTLS())
	}
	client := chronik.NewClient(cfg.Chronik.Host, cfg.Chronik.Port, opts...)

	h := api.NewHandler(watchSvc, st, client)
	srv := api.NewServer(h)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Printf("api listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
