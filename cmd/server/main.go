package main

import (
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/config"
	"github.com/evolua/backend/internal/guidance"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/session"
	"github.com/evolua/backend/internal/shop"
	"github.com/evolua/backend/internal/storage"
	"github.com/evolua/backend/internal/user"
	"github.com/evolua/backend/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	token := flag.String("token", "", "API auth token (empty disables auth)")
	flag.Parse()

	// Secrets come from .env or the process environment, never the
	// YAML file.
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.ApplyEnv()
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger := newLogger(cfg.Log)

	repo, closeRepo, err := openRepository(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer closeRepo()

	events := notify.NewLog(repo, logger)
	users := user.NewStore(repo, events, logger)

	coachOpts := []guidance.Option{
		guidance.WithModel(cfg.Guidance.Model),
		guidance.WithTimeout(cfg.Guidance.Timeout),
	}
	if cfg.Guidance.Endpoint != "" {
		coachOpts = append(coachOpts, guidance.WithEndpoint(cfg.Guidance.Endpoint))
	}
	coach := guidance.NewClient(cfg.Guidance.APIKey, logger, coachOpts...)

	sessions := session.NewController(users, coach, events, logger)

	sim := shop.NewSimulator(rand.New(rand.NewSource(time.Now().UnixNano())))
	sim.SuccessRate = cfg.Shop.SuccessRate
	sim.Delay = cfg.Shop.SettleDelay
	store := shop.NewService(sim, users, repo, events, logger)

	broadcaster := ws.NewBroadcaster(logger)
	server := ws.NewServer(users, sessions, store, events, broadcaster, logger, *token)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutting down")
		closeRepo()
		os.Exit(0)
	}()

	addr := cfg.Server.Addr()
	logger.Info().Str("addr", addr).Str("storage", cfg.Storage.Backend).Msg("server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w = zerolog.New(os.Stderr)
	if cfg.Pretty {
		w = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return w.Level(level).With().Timestamp().Logger()
}

func openRepository(cfg config.StorageConfig) (storage.Repository, func(), error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemory(), func() {}, nil
	case "sqlite":
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return storage.NewFileStore(cfg.Dir), func() {}, nil
	}
}
