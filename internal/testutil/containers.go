// Package testutil starts throwaway containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 2 * time.Minute

func startContainer(t *testing.T, req testcontainers.ContainerRequest) (testcontainers.Container, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	})

	return container, ctx
}

const (
	pgUser     = "cart_user"
	pgPassword = "cart_pass"
	pgDatabase = "storefront"
)

// StartPostgres returns a DSN for a fresh Postgres database. Migrations are
// left to the caller.
func StartPostgres(t *testing.T) string {
	t.Helper()

	c, ctx := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	})

	hostPort, err := c.PortEndpoint(ctx, "5432/tcp", "")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, hostPort, pgDatabase)
}

// StartRedis returns the host:port of a fresh Redis server.
func StartRedis(t *testing.T) string {
	t.Helper()

	c, ctx := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	})

	hostPort, err := c.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	return hostPort
}

// StartRabbitMQ returns an AMQP URL for a fresh broker.
func StartRabbitMQ(t *testing.T) string {
	t.Helper()

	c, ctx := startContainer(t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	})

	hostPort, err := c.PortEndpoint(ctx, "5672/tcp", "")
	require.NoError(t, err)
	return "amqp://guest:guest@" + hostPort + "/"
}

