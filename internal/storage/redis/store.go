// Package redis stores values as plain Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/Os-De/hs-rp.com/internal/storage"
)

const (
	initAttempts = 30
	maxBackoff   = 30 * time.Second
)

type Store struct {
	client *goredis.Client
	logger *log.Logger
}

// New accepts either a redis:// URL or a bare host[:port] address.
func New(addr string, logger *log.Logger) *Store {
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		if !strings.Contains(addr, ":") {
			addr += ":6379"
		}
		opts = &goredis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  30 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}
	return NewWithClient(goredis.NewClient(opts), logger)
}

func NewWithClient(client *goredis.Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{client: client, logger: logger}
}

// Initialize waits for Redis to answer PING, backing off exponentially.
func (s *Store) Initialize(ctx context.Context) error {
	for i := 0; i < initAttempts; i++ {
		if err := s.Ping(ctx); err == nil {
			s.logger.Printf("redis: ping ok on attempt %d", i+1)
			return nil
		}

		backoff := time.Duration(1<<uint(i)) * time.Second
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		s.logger.Printf("redis: ping failed (attempt %d/%d), retrying in %v", i+1, initAttempts, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("redis: no answer after %d attempts", initAttempts)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Ping(pingCtx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
