package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/j00les/workout-map/internal/config"
	"github.com/j00les/workout-map/internal/db"
	"github.com/j00les/workout-map/internal/server"
	"github.com/j00les/workout-map/internal/session"
	"github.com/j00les/workout-map/internal/shared/geo"
	"github.com/j00les/workout-map/internal/store"
	"github.com/j00les/workout-map/internal/stream"
	"github.com/j00les/workout-map/internal/ui"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	openStore    func(context.Context, config.Config) (store.Backend, error)
	connectRedis func(config.Config) *redis.Client
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, store.Backend, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		openStore:    store.Open,
		connectRedis: db.ConnectRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	setupLogging(cfg)

	backend, err := deps.openStore(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("store unavailable, keeping workouts in memory")
		backend = store.NewMemory()
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, backend, rdb, signals, nil); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	if every := idle / 4; every < time.Minute {
		return every
	}
	return time.Minute
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, backend store.Backend, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	if backend == nil {
		backend = store.NewMemory()
	}
	hub := stream.NewHub(rdb)
	opts := ui.Options{Zoom: cfg.MapZoom, TileURL: cfg.TileURL, Attribution: cfg.TileAttribution}
	sessions := session.NewRegistry(backend, cfg.StoreKey, func(id string) session.Views {
		return ui.New(id, hub, opts)
	})
	sessions.OnEnd(hub.Forget)
	if lat, lng, ok := cfg.Home(); ok {
		sessions.UseHome(geo.Static{Lat: lat, Lng: lng})
	}

	sessions.KeepAlive(hub.Watched)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, cfg.SessionIdleTimeout, sweepInterval(cfg.SessionIdleTimeout))

	srv := server.NewServer(cfg, sessions, hub)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()
	log.Info().Str("addr", cfg.ServerPort).Str("store", cfg.StoreBackend).Msg("workout map listening")

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	stopSweep()
	// flush pending saves before the store goes away
	sessions.Close()
	if err := backend.Close(); err != nil {
		log.Error().Err(err).Msg("close store failed")
	}
	_ = hub.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("workout map stopped")
	return nil
}
