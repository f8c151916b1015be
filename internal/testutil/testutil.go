package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTimeout(t testing.TB) time.Duration {
	t.Helper()
	v := os.Getenv("TEST_TIMEOUT_SECONDS")
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		t.Logf("invalid TEST_TIMEOUT_SECONDS=%q, using default 10", v)
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

func Context(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout(t))
}

// Logger writes through t.Log so output is attached to the test.
func Logger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
}
