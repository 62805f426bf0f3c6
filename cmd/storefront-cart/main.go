package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Os-De/hs-rp.com/internal/config"
	"github.com/Os-De/hs-rp.com/internal/db"
	"github.com/Os-De/hs-rp.com/internal/events"
	httpserver "github.com/Os-De/hs-rp.com/internal/http"
	"github.com/Os-De/hs-rp.com/internal/persistence"
	"github.com/Os-De/hs-rp.com/internal/render"
	"github.com/Os-De/hs-rp.com/internal/sequence"
	"github.com/Os-De/hs-rp.com/internal/storage"
	"github.com/Os-De/hs-rp.com/internal/storage/memory"
	"github.com/Os-De/hs-rp.com/internal/storage/postgres"
	"github.com/Os-De/hs-rp.com/internal/storage/redis"
	"github.com/Os-De/hs-rp.com/internal/storage/sqlite"
	"github.com/Os-De/hs-rp.com/internal/storefront"
	"github.com/Os-De/hs-rp.com/internal/telemetry"
)

const serviceName = "storefront-cart"

func main() {
	logger := log.New(os.Stdout, "[storefront-cart] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Printf("warning: tracing disabled: %v", err)
	}

	kv, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open %s storage: %v", cfg.Storage, err)
	}
	defer kv.Close()

	publisher, closePublisher := newPublisher(cfg, kv, logger)
	defer closePublisher()

	opts := []storefront.Option{
		storefront.WithLogger(logger),
		storefront.WithCartID(cfg.CartID),
		storefront.WithPublisher(publisher),
		storefront.WithPayment(storefront.PlaceholderPayment{Logger: logger}),
	}
	if cfg.RenderToLog {
		opts = append(opts, storefront.WithRenderers(render.Text{W: logger.Writer()}))
	}

	front, err := storefront.New(ctx, persistence.New(kv, persistence.WithKey(cfg.StorageKey)), opts...)
	if err != nil {
		logger.Fatalf("restore cart: %v", err)
	}
	logger.Printf("cart %s restored from %s storage (%d items)", front.CartID(), cfg.Storage, front.ItemCount())

	router := httpserver.NewRouter(httpserver.Deps{
		Logger:           logger,
		Cart:             front,
		Storage:          kv,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront-cart listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Printf("tracing shutdown error: %v", err)
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *log.Logger) (storage.KV, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Printf("warning: memory storage keeps the cart only for the life of the process")
		return memory.New(), nil
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageRedis:
		s := redis.New(cfg.RedisAddr, logger)
		if err := s.Initialize(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case config.StoragePostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.New(pool).WithCloser(pool.Close), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func newPublisher(cfg config.Config, kv storage.KV, logger *log.Logger) (events.CartEventsPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		logger.Printf("RABBITMQ_URL not set; checkout events are logged only")
		return events.NewLogPublisher(logger), func() {}
	}

	conn := events.MustDialRabbit(cfg.RabbitMQURL, logger)
	publisher, err := events.NewRabbitPublisher(conn, sequence.NewRepository(kv), events.PublisherOptions{Producer: serviceName})
	if err != nil {
		_ = conn.Close()
		logger.Fatalf("failed to create cart publisher: %v", err)
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Printf("publisher close error: %v", err)
		}
		if err := conn.Close(); err != nil {
			logger.Printf("rabbitmq close error: %v", err)
		}
	}
}
