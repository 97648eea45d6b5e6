package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saviobatista/ballometer-tracker/internal/config"
	"github.com/saviobatista/ballometer-tracker/internal/db"
	"github.com/saviobatista/ballometer-tracker/internal/httpsource"
	"github.com/saviobatista/ballometer-tracker/internal/logging"
	"github.com/saviobatista/ballometer-tracker/internal/nats"
	"github.com/saviobatista/ballometer-tracker/internal/redis"
	"github.com/saviobatista/ballometer-tracker/internal/series"
	"github.com/saviobatista/ballometer-tracker/internal/session"
	"github.com/saviobatista/ballometer-tracker/internal/stats"
	"github.com/saviobatista/ballometer-tracker/internal/timectx"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// EventBus interface for testability
type EventBus interface {
	SubscribeCursorEvents(handler func(*types.CursorEvent)) error
	SubscribeLiveSamples(handler func(seq uint64, sample *types.LiveSample)) error
	Close()
}

// clients holds the optional backends; nil fields are disabled
type clients struct {
	nats  *nats.Client
	db    *db.Client
	redis *redis.Client
}

func (c *clients) Close() {
	if c.nats != nil {
		c.nats.Close()
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
	}
}

// createClients connects the backends the configuration asks for
func createClients(cfg *config.Config, logger *slog.Logger) (*clients, error) {
	c := &clients{}

	if cfg.NATSURL != "" {
		natsClient, err := nats.New(cfg.NATSURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS client: %w", err)
		}
		c.nats = natsClient
	}

	if cfg.DBConnStr != "" {
		dbClient, err := db.New(cfg.DBConnStr)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create database client: %w", err)
		}
		c.db = dbClient
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		c.redis = redisClient
	}

	return c, nil
}

// buildOptions maps the configured source onto session options
func buildOptions(cfg *config.Config, c *clients, st *stats.Stats, logger *slog.Logger) (session.Options, error) {
	opts := session.Options{
		Stats:    st,
		Logger:   logger,
		Interval: cfg.PollInterval,
		Strict:   cfg.StrictIndex,
	}
	if c.redis != nil {
		opts.Publisher = c.redis
	}

	switch cfg.Source {
	case config.SourceHTTP:
		source := httpsource.New(cfg.DataURL, 10*time.Second)
		opts.Cold = source.FetchBefore
		opts.Poll = source.FetchNow
	case config.SourceDB:
		if c.db == nil {
			return opts, fmt.Errorf("database client required for SOURCE=db")
		}
		opts.Cold = c.db.LoadHistory
	case config.SourceReplay:
		store, err := series.LoadReplayFile(cfg.ReplayFile, cfg.ReplayStart)
		if err != nil {
			return opts, fmt.Errorf("failed to load replay: %w", err)
		}
		opts.Replay = store
	}

	return opts, nil
}

// setupSubscriptions routes view gestures, and in db mode live samples, into the session
func setupSubscriptions(bus EventBus, s *session.Session, source config.Source, logger *slog.Logger) error {
	if err := bus.SubscribeCursorEvents(func(event *types.CursorEvent) {
		if err := s.HandleCursorEvent(event); err != nil {
			logger.Warn("Failed to apply cursor event", slog.Any("error", err))
		}
	}); err != nil {
		return fmt.Errorf("failed to subscribe to cursor events: %w", err)
	}

	if source != config.SourceDB {
		return nil
	}
	if err := bus.SubscribeLiveSamples(func(seq uint64, sample *types.LiveSample) {
		if err := s.ApplyLive(seq, sample); err != nil {
			logger.Warn("Failed to merge live sample", slog.Uint64("seq", seq), slog.Any("error", err))
		}
	}); err != nil {
		return fmt.Errorf("failed to subscribe to live samples: %w", err)
	}
	return nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func(c io.Closer) { _ = c.Close() }(logCloser)

	c, err := createClients(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	st := stats.New()
	opts, err := buildOptions(cfg, c, st, logger)
	if err != nil {
		return err
	}

	lookup, err := timectx.NewTZFLookup()
	if err != nil {
		logger.Warn("Timezone lookup unavailable, offsets default to 0", slog.Any("error", err))
	} else if opts.Offsets, err = timectx.New(lookup, 4096); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if c.db != nil {
		st.SetSink(c.db)
		go st.StartPersistence(ctx, 5*time.Minute, logger)
	}

	s := session.New(opts)
	if c.nats != nil {
		if err := setupSubscriptions(c.nats, s, cfg.Source, logger); err != nil {
			return err
		}
	}
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	logger.Info("Session started", slog.String("id", s.ID()), slog.String("source", string(cfg.Source)))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	s.Stop()
	if c.redis != nil {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cleanupCancel()
		if err := c.redis.DeleteRenderState(cleanupCtx, s.ID()); err != nil {
			logger.Warn("Failed to delete render state", slog.Any("error", err))
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Printf("Tracker failed: %v", err)
		os.Exit(1)
	}
}
