package cea

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "3.1.4", want: Version{3, 1, 4}},
		{in: "v3.1.4", want: Version{3, 1, 4}},
		{in: "3.1", want: Version{3, 1, 0}},
		{in: "3", want: Version{3, 0, 0}},
		{in: "3.1.4-rc.1", want: Version{3, 1, 4}},
		{in: "", wantErr: true},
		{in: "three", wantErr: true},
		{in: "3.1.4.1", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestVersionAtLeast(t *testing.T) {
	t.Parallel()
	if !(Version{3, 0, 0}).AtLeast(Version{3, 0, 0}) {
		t.Fatal("equal versions must satisfy AtLeast")
	}
	if !(Version{3, 10, 0}).AtLeast(Version{3, 9, 7}) {
		t.Fatal("3.10.0 must be at least 3.9.7")
	}
	if (Version{2, 9, 9}).AtLeast(Version{3, 0, 0}) {
		t.Fatal("2.9.9 must not be at least 3.0.0")
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()
	if ok, err := readiness(0, 1); !ok || err != nil {
		t.Fatalf("expected ready, got %v %v", ok, err)
	}
	if ok, err := readiness(0, 0); ok || err != nil {
		t.Fatalf("expected not ready, got %v %v", ok, err)
	}
	_, err := readiness(4, 1)
	var code ErrorCode
	if !errors.As(err, &code) || code != 4 {
		t.Fatalf("expected ErrorCode 4, got %v", err)
	}
}

func TestHasReadinessCheck(t *testing.T) {
	t.Parallel()
	var nilModule *Module
	if nilModule.HasReadinessCheck() {
		t.Fatal("nil module has no readiness check")
	}
	if (&Module{}).HasReadinessCheck() {
		t.Fatal("module without IsInitialized has no readiness check")
	}
	m := &Module{IsInitialized: func() (bool, error) { return true, nil }}
	if !m.HasReadinessCheck() {
		t.Fatal("expected readiness check")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("cea", func(context.Context) (*Module, error) {
		return &Module{Version: Version{3, 0, 0}}, nil
	})
	r.Register("broken", func(context.Context) (*Module, error) {
		return nil, errors.New("bad build")
	})

	m, err := r.Load(context.Background(), "cea")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "cea" {
		t.Fatalf("expected registry to fill in name, got %q", m.Name)
	}

	if _, err := r.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if _, err := r.Load(context.Background(), "broken"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected opener error got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	open := func(context.Context) (*Module, error) { return &Module{}, nil }
	r.Register("cea", open)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.Register("cea", open)
}

func TestChain(t *testing.T) {
	t.Parallel()
	empty := NewRegistry()
	full := NewRegistry()
	full.Register("cea", func(context.Context) (*Module, error) { return &Module{Path: "in-process"}, nil })
	failing := NewRegistry()
	failing.Register("cea", func(context.Context) (*Module, error) { return nil, ErrIncompatibleVersion })

	m, err := Chain{empty, full}.Load(context.Background(), "cea")
	if err != nil || m.Path != "in-process" {
		t.Fatalf("expected module from second loader, got %v %v", m, err)
	}
	if _, err := (Chain{empty, empty}).Load(context.Background(), "cea"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if _, err := (Chain{failing, full}).Load(context.Background(), "cea"); !errors.Is(err, ErrIncompatibleVersion) {
		t.Fatalf("expected chain to stop on real failure, got %v", err)
	}
	if _, err := (Chain{}).Load(context.Background(), "cea"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty chain got %v", err)
	}
}

func TestNativeCandidates(t *testing.T) {
	t.Parallel()
	explicit := NativeLoader{Path: "/opt/cea/libcea.so", Dirs: []string{"/ignored"}}
	if got := explicit.candidates("cea"); len(got) != 1 || got[0] != "/opt/cea/libcea.so" {
		t.Fatalf("unexpected candidates %q", got)
	}

	dirs := NativeLoader{Dirs: []string{"/a", "/b"}}
	got := dirs.candidates("cea")
	if len(got) != 2 || filepath.Dir(got[0]) != "/a" || filepath.Dir(got[1]) != "/b" {
		t.Fatalf("unexpected candidates %q", got)
	}

	if got := (NativeLoader{}).candidates("cea"); len(got) != 1 || filepath.Dir(got[0]) != "." {
		t.Fatalf("expected bare file name, got %q", got)
	}
}

func TestLibraryFileName(t *testing.T) {
	t.Parallel()
	for goos, want := range map[string]string{
		"linux":   "libcea.so",
		"freebsd": "libcea.so",
		"darwin":  "libcea.dylib",
		"windows": "cea.dll",
	} {
		if got := libraryFileName(goos, "cea"); got != want {
			t.Fatalf("%s: expected %q got %q", goos, want, got)
		}
	}
}
