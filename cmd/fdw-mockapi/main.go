// Command fdw-mockapi serves the static event records over HTTP for the
// httpjson source to scan.
//
//	FDW_MOCKAPI_KEY=secret fdw-mockapi -addr :8080
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

	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	cfg := logger.DefaultConfig()
	cfg.Level = *level
	log := logger.New(cfg)
	logger.SetGlobal(log)

	opts := []mockapi.Option{mockapi.WithLogger(log)}
	if key := os.Getenv("FDW_MOCKAPI_KEY"); key != "" {
		opts = append(opts, mockapi.WithAPIKey(key))
		log.Info("bearer token required")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockapi.New(opts...).Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("mock api listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err.Error())
	}
	logger.Info("mock api stopped")
}
