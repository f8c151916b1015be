// Package itest provides fixture probes for the backing services that
// integration tests talk to. Each probe follows the same contract as the
// cea fixture: a missing or uninitialized service skips dependent tests.
package itest

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/cea-bindings/cea-go/internal/fixture"
	"github.com/cea-bindings/cea-go/pkg/bus"
	"github.com/cea-bindings/cea-go/pkg/storage"
)

// MigrationsTable must exist for a postgres database to count as initialized.
const MigrationsTable = "schema_migrations"

// DockerProbe checks for a usable docker daemon. The value is the CLI path.
func DockerProbe() fixture.Probe[string] {
	return fixture.Probe[string]{
		Name:       "docker",
		LoadPhrase: "CLI not found",
		Load: func(context.Context) (string, error) {
			return exec.LookPath("docker")
		},
		Ready: func(ctx context.Context, path string) (bool, error) {
			out, err := exec.CommandContext(ctx, path, "info").CombinedOutput()
			if err != nil {
				return false, fmt.Errorf("docker unavailable: %w: %s", err, strings.TrimSpace(string(out)))
			}
			return true, nil
		},
	}
}

// PostgresProbe connects to url and requires the migrations table.
func PostgresProbe(url string) fixture.Probe[*sql.DB] {
	return fixture.Probe[*sql.DB]{
		Name:           "postgres",
		LoadPhrase:     "connect failed",
		NotReadyReason: "postgres database not initialized",
		Load: func(ctx context.Context) (*sql.DB, error) {
			db, err := storage.NewPostgres(url)
			if err != nil {
				return nil, err
			}
			if err := db.PingContext(ctx); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("ping postgres: %w", err)
			}
			return db, nil
		},
		Ready: func(ctx context.Context, db *sql.DB) (bool, error) {
			return storage.TableExists(ctx, db, MigrationsTable)
		},
		Release: func(db *sql.DB) error { return db.Close() },
	}
}

// RedisProbe connects to addr and requires a PONG. Redis has no
// initialization step, so the probe has no readiness check.
func RedisProbe(addr string) fixture.Probe[*redis.Client] {
	return fixture.Probe[*redis.Client]{
		Name:       "redis",
		LoadPhrase: "connect failed",
		Load: func(ctx context.Context) (*redis.Client, error) {
			client := storage.NewRedis(addr)
			if err := client.Ping(ctx).Err(); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("ping redis %s: %w", addr, err)
			}
			return client, nil
		},
		Release: func(c *redis.Client) error { return c.Close() },
	}
}

// NATSProbe connects to url and requires a flushed round trip.
func NATSProbe(url string) fixture.Probe[*nats.Conn] {
	return fixture.Probe[*nats.Conn]{
		Name:           "nats",
		LoadPhrase:     "connect failed",
		NotReadyReason: "nats connection not established",
		Load: func(ctx context.Context) (*nats.Conn, error) {
			return bus.Connect(ctx, url, "cea-go-itest")
		},
		Ready: bus.Healthy,
		Release: func(nc *nats.Conn) error {
			nc.Close()
			return nil
		},
	}
}
