package itest

import (
	"database/sql"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cea-bindings/cea-go/internal/fixture"
	"github.com/cea-bindings/cea-go/pkg/config"
)

// Services holds one lazily acquired session per backing service.
type Services struct {
	Docker   *fixture.Session[string]
	Postgres *fixture.Session[*sql.DB]
	Redis    *fixture.Session[*redis.Client]
	NATS     *fixture.Session[*nats.Conn]
}

// NewServices builds sessions for the services addressed by cfg. Nothing
// connects until a session is first used.
func NewServices(cfg config.Config, logger zerolog.Logger) *Services {
	opts := []fixture.Option{fixture.WithLogger(logger), fixture.WithTimeout(cfg.ProbeTimeout)}
	return &Services{
		Docker:   fixture.NewSession(DockerProbe(), opts...),
		Postgres: fixture.NewSession(PostgresProbe(cfg.PostgresURL), opts...),
		Redis:    fixture.NewSession(RedisProbe(cfg.RedisAddr), opts...),
		NATS:     fixture.NewSession(NATSProbe(cfg.NATSURL), opts...),
	}
}

// Close releases every acquired service.
func (s *Services) Close() error {
	return errors.Join(
		s.Docker.Close(),
		s.Postgres.Close(),
		s.Redis.Close(),
		s.NATS.Close(),
	)
}
