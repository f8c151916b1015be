//go:build linux || darwin || freebsd

package cea

import (
	"context"
	"errors"
	"fmt"

	"github.com/ebitengine/purego"
)

// Load opens the first candidate library that the dynamic linker accepts,
// binds its version and readiness symbols and checks MinVersion.
func (l NativeLoader) Load(ctx context.Context, name string) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		lib   uintptr
		path  string
		tried []error
	)
	for _, candidate := range l.candidates(name) {
		h, err := purego.Dlopen(candidate, purego.RTLD_NOW|purego.RTLD_LOCAL)
		if err != nil {
			tried = append(tried, fmt.Errorf("%s: %w", candidate, err))
			continue
		}
		lib, path = h, candidate
		break
	}
	if lib == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(tried...))
	}

	version, err := bindVersion(lib)
	if err == nil && !l.MinVersion.IsZero() && !version.AtLeast(l.MinVersion) {
		err = fmt.Errorf("%w: %s is %s, need at least %s", ErrIncompatibleVersion, path, version, l.MinVersion)
	}
	if err != nil {
		_ = purego.Dlclose(lib)
		return nil, err
	}

	m := &Module{Name: name, Path: path, Version: version}
	if sym, err := purego.Dlsym(lib, symIsInitialized); err == nil && sym != 0 {
		var isInitialized func(*int32) int32
		purego.RegisterFunc(&isInitialized, sym)
		m.IsInitialized = func() (bool, error) {
			var flag int32
			code := isInitialized(&flag)
			return readiness(code, flag)
		}
	}
	return m, nil
}

func bindVersion(lib uintptr) (Version, error) {
	var parts [3]int
	for i, name := range []string{symVersionMajor, symVersionMinor, symVersionPatch} {
		sym, err := purego.Dlsym(lib, name)
		if err != nil || sym == 0 {
			return Version{}, fmt.Errorf("%w: %s", ErrMissingSymbol, name)
		}
		var get func(*int32) int32
		purego.RegisterFunc(&get, sym)
		var n int32
		if code := get(&n); code != 0 {
			return Version{}, fmt.Errorf("%s: %w", name, ErrorCode(code))
		}
		parts[i] = int(n)
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}
