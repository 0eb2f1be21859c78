//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	// registers the "pgx" database/sql driver used by the readiness check
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	postgresImage = "postgres:15-alpine"
	redisImage    = "redis:7-alpine"
	natsImage     = "nats:2.10-alpine"
)

// SetupPostgres starts a throwaway PostgreSQL and returns a database config pointing at it
func SetupPostgres(t *testing.T) config.DatabaseConfig {
	ctx := context.Background()
	port := nat.Port("5432/tcp")
	const (
		user     = "test_user"
		password = "test_password"
		dbName   = "reelchef_test"
	)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"POSTGRES_DB":       dbName,
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForSQL(port, "pgx", func(host string, p nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, p.Port(), dbName)
				}),
			),
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	terminateOnCleanup(t, container)

	host, mapped := endpoint(t, container, port)
	return config.DatabaseConfig{
		Driver:      "postgres",
		Host:        host,
		Port:        mapped.Int(),
		Database:    dbName,
		Username:    user,
		Password:    password,
		SSLMode:     "disable",
		AutoMigrate: true,
	}
}

// SetupRedis starts a throwaway Redis and returns a config pointing at it
func SetupRedis(t *testing.T) config.RedisConfig {
	port := nat.Port("6379/tcp")
	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	terminateOnCleanup(t, container)

	host, mapped := endpoint(t, container, port)
	return config.RedisConfig{Host: host, Port: mapped.Int()}
}

// SetupNATS starts a JetStream-enabled NATS server and returns its URL
func SetupNATS(t *testing.T) string {
	port := nat.Port("4222/tcp")
	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        natsImage,
			ExposedPorts: []string{string(port)},
			Cmd:          []string{"-js"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start nats container")
	terminateOnCleanup(t, container)

	host, mapped := endpoint(t, container, port)
	return fmt.Sprintf("nats://%s:%s", host, mapped.Port())
}

func endpoint(t *testing.T, container testcontainers.Container, port nat.Port) (string, nat.Port) {
	ctx := context.Background()
	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped
}

func terminateOnCleanup(t *testing.T, container testcontainers.Container) {
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
}
