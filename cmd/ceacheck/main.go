package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cea-bindings/cea-go/internal/cea"
	"github.com/cea-bindings/cea-go/internal/cea/ceatest"
	"github.com/cea-bindings/cea-go/internal/fixture"
	"github.com/cea-bindings/cea-go/internal/itest"
	"github.com/cea-bindings/cea-go/pkg/config"
	"github.com/cea-bindings/cea-go/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ceacheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		services   = fs.Bool("services", false, "also probe docker, postgres, redis and nats")
		containers = fs.Bool("containers", false, "start postgres, redis and nats in docker and probe those")
		startWait  = fs.Duration("start-timeout", 2*time.Minute, "time allowed for -containers to start")
		strict     = fs.Bool("strict", false, "exit 1 when any prerequisite is skipped")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load("ceacheck")
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	logger := logging.New(cfg.AppName, cfg.Component, cfg.Env, cfg.LogLevel)

	skipped := report(stdout, ceatest.NewSession(cfg, logger).Outcome(), func(m *cea.Module) string {
		return fmt.Sprintf("%s %s at %s", m.Name, m.Version, m.Path)
	})

	if *containers {
		session := fixture.NewSession(itest.ContainersProbe(),
			fixture.WithLogger(logger),
			fixture.WithTimeout(*startWait),
		)
		defer logClose(logger, "remove containers", session.Close)
		out := session.Outcome()
		skipped += report(stdout, out, func(*itest.Containers) string { return "containers started" })
		if !out.Skipped() {
			cfg = out.Value.Apply(cfg)
			*services = true
		}
	}

	if *services {
		svc := itest.NewServices(cfg, logger)
		defer logClose(logger, "release services", svc.Close)
		skipped += report(stdout, svc.Docker.Outcome(), func(path string) string {
			return "docker at " + path
		})
		skipped += report(stdout, svc.Postgres.Outcome(), func(*sql.DB) string {
			return "postgres " + redactURL(cfg.PostgresURL)
		})
		skipped += report(stdout, svc.Redis.Outcome(), func(*redis.Client) string {
			return "redis " + cfg.RedisAddr
		})
		skipped += report(stdout, svc.NATS.Outcome(), func(nc *nats.Conn) string {
			return "nats " + nc.ConnectedUrlRedacted()
		})
	}

	if *strict && skipped > 0 {
		return 1
	}
	return 0
}

// report prints one OK or SKIP line and returns 1 for a skip.
func report[T any](w io.Writer, out fixture.Outcome[T], describe func(T) string) int {
	if out.Skipped() {
		fmt.Fprintf(w, "SKIP: %s\n", out.SkipReason)
		return 1
	}
	fmt.Fprintf(w, "OK: %s\n", describe(out.Value))
	return 0
}

// redactURL hides the password of a DSN. Unparseable input is hidden entirely.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func logClose(logger zerolog.Logger, msg string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error().Err(err).Msg(msg)
	}
}
