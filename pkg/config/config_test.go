package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_NAME", "APP_ENV", "LOG_LEVEL", "CEA_MODULE_NAME", "CEA_LIBRARY_PATH", "CEA_LIBRARY_DIRS", "CEA_MIN_VERSION", "CEA_PROBE_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg, err := Load("ceacheck")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Component != "ceacheck" || cfg.ModuleName != "cea" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Fatalf("expected 10s probe timeout got %s", cfg.ProbeTimeout)
	}
	if cfg.LibraryDirs != nil || cfg.MinVersion != "" {
		t.Fatalf("expected no library dirs or min version: %+v", cfg)
	}
}

func TestLoadLibraryDirs(t *testing.T) {
	t.Setenv("CEA_LIBRARY_DIRS", strings.Join([]string{"/opt/cea/lib", "", " /usr/local/lib "}, string(filepath.ListSeparator)))
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.LibraryDirs) != 2 || cfg.LibraryDirs[0] != "/opt/cea/lib" || cfg.LibraryDirs[1] != "/usr/local/lib" {
		t.Fatalf("unexpected dirs: %q", cfg.LibraryDirs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "non numeric timeout", key: "CEA_PROBE_TIMEOUT_SECONDS", val: "soon"},
		{name: "zero timeout", key: "CEA_PROBE_TIMEOUT_SECONDS", val: "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load("test"); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}

func TestLoadKeepsMinVersionUnparsed(t *testing.T) {
	t.Setenv("CEA_MIN_VERSION", " latest ")
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MinVersion != "latest" {
		t.Fatalf("expected trimmed raw version, got %q", cfg.MinVersion)
	}
}
