package cea

import (
	"path/filepath"
	"runtime"
)

// Exported symbols of the native library.
const (
	symVersionMajor  = "cea_version_major"
	symVersionMinor  = "cea_version_minor"
	symVersionPatch  = "cea_version_patch"
	symIsInitialized = "cea_is_initialized"
)

// NativeLoader loads the shared library build of CEA.
type NativeLoader struct {
	// Path is an explicit library file. When set, Dirs is ignored.
	Path string
	// Dirs are searched in order for lib<name>.so (lib<name>.dylib on darwin).
	// When empty the bare file name is handed to the dynamic linker.
	Dirs []string
	// MinVersion rejects older libraries. Zero disables the check.
	MinVersion Version
}

func (l NativeLoader) candidates(name string) []string {
	if l.Path != "" {
		return []string{l.Path}
	}
	file := libraryFileName(runtime.GOOS, name)
	if len(l.Dirs) == 0 {
		return []string{file}
	}
	out := make([]string, 0, len(l.Dirs))
	for _, dir := range l.Dirs {
		out = append(out, filepath.Join(dir, file))
	}
	return out
}

func libraryFileName(goos, name string) string {
	switch goos {
	case "darwin":
		return "lib" + name + ".dylib"
	case "windows":
		return name + ".dll"
	default:
		return "lib" + name + ".so"
	}
}
