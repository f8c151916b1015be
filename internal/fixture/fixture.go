// Package fixture provides session-scoped guarded fixtures: an external
// collaborator is loaded once, optionally checked for readiness, and either
// handed to every dependent test or turned into a skip for all of them.
package fixture

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const defaultLoadPhrase = "import failed"

// Cause identifies why an outcome is a skip.
type Cause int

const (
	CauseNone Cause = iota
	CauseLoadFailure
	CauseReadinessFailure
)

func (c Cause) String() string {
	switch c {
	case CauseLoadFailure:
		return "load_failure"
	case CauseReadinessFailure:
		return "readiness_failure"
	default:
		return "none"
	}
}

// Probe describes how to acquire one external collaborator.
type Probe[T any] struct {
	Name string

	// Load acquires the collaborator. Required.
	Load func(ctx context.Context) (T, error)

	// Ready reports whether a loaded collaborator is usable. Nil when the
	// collaborator exposes no readiness capability, in which case the check
	// is not run at all.
	Ready func(ctx context.Context, v T) (bool, error)

	// Release frees a loaded collaborator on Session.Close. Optional.
	Release func(v T) error

	// LoadPhrase completes "<name> <phrase>: <err>" for load failures.
	// Defaults to "import failed".
	LoadPhrase string

	// NotReadyReason is the skip reason when Ready returns false.
	// Defaults to "<name> database not initialized".
	NotReadyReason string
}

// Outcome is the memoized result of acquiring a probe: either Value, or a
// skip carrying SkipReason.
type Outcome[T any] struct {
	Value      T
	SkipReason string
	Cause      Cause
	Err        error
}

// Skipped reports whether dependent tests must skip.
func (o Outcome[T]) Skipped() bool {
	return o.Cause != CauseNone
}

// Session owns the lazily computed outcome of one probe for the lifetime of
// a test binary. Construct it once (typically in TestMain or a package-level
// var) and pass it to the tests that need it.
type Session[T any] struct {
	probe   Probe[T]
	logger  zerolog.Logger
	timeout time.Duration

	once    sync.Once
	outcome Outcome[T]

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// WithLogger sets the logger used to report the outcome.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *sessionOptions) { o.logger = logger }
}

// WithTimeout bounds the combined load and readiness check. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *sessionOptions) { o.timeout = d }
}

// NewSession returns a session for probe. Nothing is loaded until the first
// call to Outcome or Acquire.
func NewSession[T any](probe Probe[T], opts ...Option) *Session[T] {
	o := sessionOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if probe.LoadPhrase == "" {
		probe.LoadPhrase = defaultLoadPhrase
	}
	if probe.NotReadyReason == "" {
		probe.NotReadyReason = probe.Name + " database not initialized"
	}
	return &Session[T]{
		probe:   probe,
		logger:  o.logger.With().Str("fixture", probe.Name).Logger(),
		timeout: o.timeout,
	}
}

// Name returns the probe name.
func (s *Session[T]) Name() string {
	return s.probe.Name
}

// Outcome acquires the collaborator on first use and returns the cached
// result on every call after that.
func (s *Session[T]) Outcome() Outcome[T] {
	s.once.Do(func() {
		s.outcome = s.acquire()
		if s.outcome.Skipped() {
			s.logger.Warn().
				Str("cause", s.outcome.Cause.String()).
				Str("reason", s.outcome.SkipReason).
				Msg("fixture skipped")
			return
		}
		s.logger.Info().Msg("fixture ready")
	})
	return s.outcome
}

// Acquire returns the collaborator, or skips tb with the session's reason.
func (s *Session[T]) Acquire(tb testing.TB) T {
	tb.Helper()
	out := s.Outcome()
	if out.Skipped() {
		tb.Skip(out.SkipReason)
	}
	return out.Value
}

// Close releases an acquired collaborator. It is a no-op when nothing was
// acquired or the probe has no Release.
func (s *Session[T]) Close() error {
	s.closeOnce.Do(func() {
		// Claim the once so a late Outcome call cannot load after Close.
		s.once.Do(func() {
			s.outcome = Outcome[T]{
				SkipReason: fmt.Sprintf("%s session closed", s.probe.Name),
				Cause:      CauseLoadFailure,
				Err:        ErrClosed,
			}
		})
		if s.outcome.Skipped() || s.probe.Release == nil {
			return
		}
		s.closeErr = s.probe.Release(s.outcome.Value)
	})
	return s.closeErr
}

func (s *Session[T]) acquire() Outcome[T] {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	v, err := s.load(ctx)
	if err != nil {
		return Outcome[T]{
			SkipReason: fmt.Sprintf("%s %s: %v", s.probe.Name, s.probe.LoadPhrase, err),
			Cause:      CauseLoadFailure,
			Err:        err,
		}
	}

	if s.probe.Ready == nil {
		return Outcome[T]{Value: v}
	}
	ready, err := s.ready(ctx, v)
	switch {
	case err != nil:
		s.release(v)
		return Outcome[T]{
			SkipReason: fmt.Sprintf("%s initialization check failed: %v", s.probe.Name, err),
			Cause:      CauseReadinessFailure,
			Err:        err,
		}
	case !ready:
		s.release(v)
		return Outcome[T]{
			SkipReason: s.probe.NotReadyReason,
			Cause:      CauseReadinessFailure,
			Err:        ErrNotReady,
		}
	}
	return Outcome[T]{Value: v}
}

func (s *Session[T]) load(ctx context.Context) (v T, err error) {
	if s.probe.Load == nil {
		return v, ErrNoLoader
	}
	defer recoverInto(&err)
	return s.probe.Load(ctx)
}

func (s *Session[T]) ready(ctx context.Context, v T) (ok bool, err error) {
	defer recoverInto(&err)
	return s.probe.Ready(ctx, v)
}

// release frees a value that will not be handed out. Errors are only logged.
func (s *Session[T]) release(v T) {
	if s.probe.Release == nil {
		return
	}
	if err := s.probe.Release(v); err != nil {
		s.logger.Debug().Err(err).Msg("release after failed readiness check")
	}
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = fmt.Errorf("panic: %w", e)
			return
		}
		*err = fmt.Errorf("panic: %v", r)
	}
}
