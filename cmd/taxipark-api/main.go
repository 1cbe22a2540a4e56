// README: Entry point; loads config, wires the simulator, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxipark/internal/config"
	httptransport "taxipark/internal/http"
	"taxipark/internal/infra"
	"taxipark/internal/modules/eventlog"
	"taxipark/internal/modules/history"
	"taxipark/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink *eventlog.Sink
	if cfg.Redis.Addr != "" {
		sink = eventlog.NewWithMirror(1024, infra.NewRedis(cfg.Redis.Addr))
	} else {
		sink = eventlog.New(1024)
	}
	defer sink.Close()

	var histStore *history.Store
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		histStore = history.NewStore(dbPool)
	}

	park := sim.New(cfg, sink, histStore)
	park.Start()
	if cfg.SeedOrders > 0 {
		park.SeedOrders(cfg.SeedOrders)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Sim:     park,
		History: histStore,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if !park.Stop(5 * time.Second) {
		log.Printf("some tasks did not stop within the join timeout")
	}
}
