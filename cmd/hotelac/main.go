package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nrgchamp/hotelac/internal/api"
	"nrgchamp/hotelac/internal/clock"
	"nrgchamp/hotelac/internal/config"
	"nrgchamp/hotelac/internal/engine"
	"nrgchamp/hotelac/internal/kafkaevents"
	"nrgchamp/hotelac/internal/logging"
	"nrgchamp/hotelac/internal/metrics"
	"nrgchamp/hotelac/internal/ticker"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dl := logging.New()
	defer dl.Close()
	log := dl.Logger

	log.Info("starting hotelac", "cfg", cfg.Redacted())

	clk := clock.New(time.Now())
	if cfg.TimeAccelerationFactor > 0 {
		clk.SetSpeed(cfg.TimeAccelerationFactor)
	}
	met := metrics.New()
	eng := engine.New(cfg, clk, met)

	pub := kafkaevents.New(cfg.KafkaBrokers, log)
	eng.SetEventPublisher(pub)

	srv := api.New(eng, met, log)
	httpSrv := &http.Server{
		Addr:    cfg.HTTPBind,
		Handler: srv.Router(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tck := ticker.New(eng, time.Second, log)
	go tck.Run(ctx)

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPBind)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown requested")

	cancel()
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = pub.Close()
	log.Info("bye")
}
