package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"rollcall/internal/notify"
	participantHandler "rollcall/internal/participant/handler"
	"rollcall/internal/participant/service"
	"rollcall/internal/participant/store"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/httpserver"
	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
	platformredis "rollcall/internal/platform/redis"
	httptransport "rollcall/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	st, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer closeStore()

	hub := notify.NewHub(log, m)
	defer hub.Close()

	dispatcher := &notify.Dispatcher{Hub: hub}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := notify.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return fmt.Errorf("build kafka publisher: %w", err)
		}
		defer publisher.Close()
		dispatcher.Kafka = publisher
	}

	svc := service.New(st, dispatcher, log, service.WithMetrics(m))
	participants := participantHandler.New(svc, log)
	events := notify.NewSSEHandler(hub, log)

	router := httptransport.NewRouter(log, participants, events)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting rollcall",
			"addr", cfg.Addr,
			"store_backend", string(cfg.StoreBackend),
			"kafka_enabled", dispatcher.Kafka != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStore selects the persistence backend. The file store is the default;
// the others honor the same append-only contract behind the Store interface.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil

	case config.StorePostgres:
		db, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		ps := store.NewPostgresStore(db)
		if err := ps.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return ps, func() { db.Close() }, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client.Client), func() { client.Close() }, nil

	case config.StoreBadger:
		bs, err := store.NewBadgerStore(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() {
			if err := bs.Close(); err != nil {
				log.Error("failed to close badger store", "error", err)
			}
		}, nil

	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.DataFile, log)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
