// Package ceatest provides the session fixture for tests that need the CEA
// library. Tests whose library cannot be loaded, or whose thermodynamic
// database is not initialized, are skipped rather than failed.
//
//	var session *fixture.Session[*cea.Module]
//
//	func TestMain(m *testing.M) {
//		session = ceatest.NewSessionFromEnv(zerolog.Nop())
//		os.Exit(m.Run())
//	}
//
//	func TestEquilibrium(t *testing.T) {
//		mod := session.Acquire(t)
//		...
//	}
package ceatest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cea-bindings/cea-go/internal/cea"
	"github.com/cea-bindings/cea-go/internal/fixture"
	"github.com/cea-bindings/cea-go/pkg/config"
)

// Probe builds the fixture probe for the module called name. The probe's
// name is always "cea" so skip reasons read the same whatever the library
// file is called.
func Probe(loader cea.Loader, name string) fixture.Probe[*cea.Module] {
	return fixture.Probe[*cea.Module]{
		Name: "cea",
		Load: func(ctx context.Context) (*cea.Module, error) {
			m, err := loader.Load(ctx, name)
			if err != nil {
				return nil, err
			}
			if m == nil {
				return nil, fmt.Errorf("%w: loader returned no module for %q", cea.ErrNotFound, name)
			}
			return m, nil
		},
		Ready: Ready,
	}
}

// Ready runs the module's readiness check. A module that does not export
// one is treated as ready.
func Ready(_ context.Context, m *cea.Module) (bool, error) {
	if !m.HasReadinessCheck() {
		return true, nil
	}
	return m.IsInitialized()
}

// NewSession returns a session that loads the native library described by cfg.
func NewSession(cfg config.Config, logger zerolog.Logger) *fixture.Session[*cea.Module] {
	loader, err := NativeLoader(cfg)
	if err != nil {
		return failedSession(err, cfg, logger)
	}
	return NewSessionWithLoader(loader, cfg, logger)
}

// NewSessionFromEnv is NewSession with configuration read from the
// environment. A configuration error becomes a load failure, so only the
// tests that acquire the session skip.
func NewSessionFromEnv(logger zerolog.Logger) *fixture.Session[*cea.Module] {
	cfg, err := config.Load("ceatest")
	if err != nil {
		return failedSession(err, cfg, logger)
	}
	return NewSession(cfg, logger)
}

// failedSession reports err as a load failure on first use.
func failedSession(err error, cfg config.Config, logger zerolog.Logger) *fixture.Session[*cea.Module] {
	probe := Probe(nil, cfg.ModuleName)
	probe.Load = func(context.Context) (*cea.Module, error) { return nil, err }
	return newSession(probe, cfg, logger)
}

// NewSessionWithLoader is NewSession with an injected loader.
func NewSessionWithLoader(loader cea.Loader, cfg config.Config, logger zerolog.Logger) *fixture.Session[*cea.Module] {
	return newSession(Probe(loader, cfg.ModuleName), cfg, logger)
}

func newSession(probe fixture.Probe[*cea.Module], cfg config.Config, logger zerolog.Logger) *fixture.Session[*cea.Module] {
	return fixture.NewSession(probe,
		fixture.WithLogger(logger),
		fixture.WithTimeout(cfg.ProbeTimeout),
	)
}

// NativeLoader builds the native loader from cfg.
func NativeLoader(cfg config.Config) (cea.NativeLoader, error) {
	l := cea.NativeLoader{Path: cfg.LibraryPath, Dirs: cfg.LibraryDirs}
	if cfg.MinVersion != "" {
		v, err := cea.ParseVersion(cfg.MinVersion)
		if err != nil {
			return cea.NativeLoader{}, fmt.Errorf("invalid CEA_MIN_VERSION: %w", err)
		}
		l.MinVersion = v
	}
	return l, nil
}
