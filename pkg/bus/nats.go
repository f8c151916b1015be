package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultFlushTimeout = 2 * time.Second

// Connect creates a NATS connection that fails fast instead of retrying.
func Connect(ctx context.Context, url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.NoReconnect(),
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			opts = append(opts, nats.Timeout(d))
		}
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// Healthy reports whether the connection is up and the server answers a
// round trip before ctx expires.
func Healthy(ctx context.Context, nc *nats.Conn) (bool, error) {
	if nc.Status() != nats.CONNECTED {
		return false, nil
	}
	var err error
	if _, ok := ctx.Deadline(); ok {
		err = nc.FlushWithContext(ctx)
	} else {
		err = nc.FlushTimeout(defaultFlushTimeout)
	}
	if err != nil {
		return false, fmt.Errorf("flush: %w", err)
	}
	return true, nil
}
