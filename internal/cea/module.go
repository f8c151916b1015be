// Package cea models the native CEA thermochemistry library as an opaque,
// loadable module. It does not wrap the solver API; it only knows how to
// find the library, check its version and ask whether its thermodynamic
// database has been initialized.
package cea

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Module is a loaded handle to the library. It is never mutated after Load.
type Module struct {
	Name    string
	Path    string
	Version Version

	// IsInitialized reports whether the thermodynamic database is loaded.
	// Nil when the library does not export a readiness check.
	IsInitialized func() (bool, error)
}

// HasReadinessCheck reports whether the module exposes IsInitialized.
func (m *Module) HasReadinessCheck() bool {
	return m != nil && m.IsInitialized != nil
}

// Loader resolves a module by name.
type Loader interface {
	Load(ctx context.Context, name string) (*Module, error)
}

// Version is a library release number.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion accepts "3", "3.1", "3.1.4" with or without a leading "v".
// Pre-release and build suffixes are ignored.
func ParseVersion(s string) (Version, error) {
	v := "v" + strings.TrimPrefix(strings.TrimSpace(s), "v")
	if !semver.IsValid(v) {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	core, _, _ := strings.Cut(strings.TrimPrefix(semver.Canonical(v), "v"), "-")
	parts := strings.Split(core, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is unset.
func (v Version) IsZero() bool {
	return v == Version{}
}

// AtLeast reports whether v >= other.
func (v Version) AtLeast(other Version) bool {
	return semver.Compare("v"+v.String(), "v"+other.String()) >= 0
}

// ErrorCode is a non-zero cea_err value returned by the library.
type ErrorCode int32

func (c ErrorCode) Error() string {
	return fmt.Sprintf("cea error code %d", int32(c))
}

// readiness converts the out-parameter and return code of
// cea_is_initialized into a Go result.
func readiness(code int32, initialized int32) (bool, error) {
	if code != 0 {
		return false, ErrorCode(code)
	}
	return initialized != 0, nil
}
