//go:build !(linux || darwin || freebsd)

package cea

import (
	"context"
	"fmt"
	"runtime"
)

func (l NativeLoader) Load(_ context.Context, name string) (*Module, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, libraryFileName(runtime.GOOS, name))
}
