// Command gauged runs the battery gauge on a Linux host with the fuel gauge
// on /dev/i2c-*. Readings are logged, and optionally published over BLE and a
// websocket feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batterygauge-go/config"
	"batterygauge-go/gauge"
	"batterygauge-go/platform"
	"batterygauge-go/sched"
	"batterygauge-go/services/blebattery"
	"batterygauge-go/services/heartbeat"
	"batterygauge-go/services/wsfeed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using process environment")
	}
	path := flag.String("config", os.Getenv("GAUGED_CONFIG"), "YAML board overrides")
	flag.Parse()

	h, err := config.LoadOverrides(*path)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", *path), zap.Error(err))
	}
	logger.Info("starting gauge",
		zap.String("board", h.Board.Name),
		zap.Bool("present", h.Board.Present),
		zap.String("bus", h.Board.Gauge.Bus),
		zap.Duration("refresh", h.Refresh))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := sched.New()
	g := gauge.New(platform.NewBackend(ctx, h.Board, s), s, gauge.Params{
		Present:        h.Board.Present,
		TotalCapacity:  h.Board.CapacityMAh,
		AverageCurrent: h.Board.AverageCurrentMA,
	})
	defer g.Close()

	g.Subscribe(gauge.Func(func(perMille int16) {
		logger.Info("battery level changed",
			zap.Int16("per_mille", perMille),
			zap.Int16("milli_volt", g.MilliVolt()))
	}))

	if h.BLE.Enable {
		startBLE(ctx, g, h.BLE.Name, logger)
	}
	if h.Listen != "" {
		startFeed(ctx, g, h.Listen, logger)
	}

	heartbeat.New(g, h.Refresh, func(time.Time) {
		st := g.Stats()
		logger.Debug("refresh",
			zap.Int16("per_mille", g.PerMille()),
			zap.Int16("milli_volt", g.MilliVolt()),
			zap.Int("queued", st.Queued),
			zap.Bool("in_flight", st.InFlight))
	}).Start(ctx)

	s.Run(ctx)
	logger.Info("shutting down")
}

func startBLE(ctx context.Context, g *gauge.Gauge, name string, logger *zap.Logger) {
	w, err := blebattery.Advertise(name)
	if err != nil {
		logger.Warn("BLE battery service unavailable", zap.Error(err))
		return
	}
	svc := blebattery.New(w)
	g.Subscribe(svc)
	go svc.Run(ctx)
	logger.Info("BLE battery service advertising", zap.String("name", name))
}

func startFeed(ctx context.Context, g *gauge.Gauge, addr string, logger *zap.Logger) {
	feed := wsfeed.New(g, logger.Named("feed"))
	g.Subscribe(feed)
	go feed.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/battery", feed)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("feed server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("websocket feed listening", zap.String("addr", addr))
}
