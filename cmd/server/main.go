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

	"github.com/sirupsen/logrus"

	"github.com/stillpath/journey/internal/catalog"
	"github.com/stillpath/journey/internal/config"
	"github.com/stillpath/journey/internal/metrics"
	"github.com/stillpath/journey/internal/mock"
	"github.com/stillpath/journey/internal/progress"
	"github.com/stillpath/journey/internal/ws"
)

func main() {
	mockMode := flag.Bool("mock", false, "Enroll demo players and simulate their training")
	mockDay := flag.Duration("mock-day", time.Minute, "Real time per simulated day in mock mode")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	catalogPath := flag.String("catalog", "", "Override catalog file (realms, templates, policy)")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			logrus.Fatalf("Failed to load catalog: %v", err)
		}
	}
	engine, err := cat.Engine()
	if err != nil {
		logrus.Fatalf("Failed to build engine: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		logrus.Fatalf("Failed to open progress store: %v", err)
	}
	defer closeStore()

	var trackerOpts []progress.Option
	if *mockMode {
		trackerOpts = append(trackerOpts, progress.WithClock(mock.FastClock(time.Now(), *mockDay)))
	}
	tracker := progress.NewTracker(engine, store, trackerOpts...)

	m := metrics.New()
	broadcaster := ws.NewBroadcaster(cfg.Broadcast.Throttle, cfg.Broadcast.MaxClients)
	broadcaster.OnClientCount(func(n int) { m.WSClients.Set(float64(n)) })
	tracker.OnProgress(broadcaster.QueueProgress)

	server := ws.NewServer(engine, tracker, broadcaster, m, ws.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthToken:      cfg.Server.AuthToken,
		MaxPathLevels:  cfg.Server.MaxPathLevels,
		CacheTTL:       cfg.Cache.TTL,
	})

	if *mockMode {
		logrus.Info("Starting in mock mode")
		gen := mock.NewGenerator(tracker, 500*time.Millisecond)
		if err := gen.Start(ctx); err != nil {
			logrus.Fatalf("Failed to start mock players: %v", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down...")
		broadcaster.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("Shutdown error: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":      addr,
		"store":     cfg.Store.Driver,
		"max_level": engine.Realms().MaxLevel(),
	}).Info("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("Server error: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (progress.Store, func(), error) {
	switch cfg.Driver {
	case config.StoreRedis:
		client, err := progress.NewRedisClient(ctx, progress.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return progress.NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), func() { client.Close() }, nil
	default:
		s := progress.NewFileStore(cfg.Dir)
		logrus.Infof("Storing progress in %s", s.Dir())
		return s, func() {}, nil
	}
}
