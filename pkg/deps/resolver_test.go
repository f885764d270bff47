package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matzehuels/crategen/pkg/errors"
)

// fakeCargo writes a shell script standing in for cargo.
func fakeCargo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCargoResolver(t *testing.T) {
	fixture, err := filepath.Abs("testdata/metadata.json")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	cargo := fakeCargo(t, `echo "$@" > `+argsFile+`
cat `+fixture)

	r := &CargoResolver{Cargo: cargo}
	md, err := r.Resolve(context.Background(), dir, ResolveOptions{Offline: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(md.Packages) != 7 {
		t.Errorf("got %d packages, want 7", len(md.Packages))
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != "metadata --format-version 1 --offline" {
		t.Errorf("cargo args = %q", got)
	}
}

func TestCargoResolverFailure(t *testing.T) {
	cargo := fakeCargo(t, `echo "error: failed to select a version" >&2
exit 101`)

	r := &CargoResolver{Cargo: cargo}
	_, err := r.Resolve(context.Background(), t.TempDir(), ResolveOptions{})
	if !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Fatalf("Resolve() error = %v, want EXTERNAL_TOOL_FAILURE", err)
	}
	if !strings.Contains(err.Error(), "failed to select a version") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestDefaultCargo(t *testing.T) {
	t.Setenv("CARGO", "/opt/rust/bin/cargo")
	if got := DefaultCargo(); got != "/opt/rust/bin/cargo" {
		t.Errorf("DefaultCargo() = %q", got)
	}
	t.Setenv("CARGO", "")
	if got := DefaultCargo(); got != "cargo" {
		t.Errorf("DefaultCargo() = %q, want cargo", got)
	}
}

// symlinkedCheckout returns a symlink to a fresh directory and the
// directory itself. cargo sees the resolved path as its working directory.
func symlinkedCheckout(t *testing.T) (link, target string) {
	t.Helper()
	target = t.TempDir()
	link = filepath.Join(t.TempDir(), "checkout")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	return link, target
}

func TestCargoResolverSymlinkedLocalRoot(t *testing.T) {
	link, _ := symlinkedCheckout(t)
	cargo := fakeCargo(t, `root=$(pwd -P)
cat <<EOF
{
  "packages": [
    {"name": "chromium", "version": "0.1.0", "id": "chromium 0.1.0", "source": null,
     "manifest_path": "$root/Cargo.toml", "targets": []},
    {"name": "foo", "version": "1.2.0", "id": "foo 1.2.0", "source": null,
     "manifest_path": "$root/foo/v1/crate/Cargo.toml",
     "targets": [{"name": "foo", "kind": ["lib"], "crate_types": ["lib"], "src_path": "$root/foo/v1/crate/src/lib.rs"}]}
  ],
  "workspace_members": ["chromium 0.1.0"],
  "resolve": {"nodes": [
    {"id": "chromium 0.1.0", "deps": [{"name": "foo", "pkg": "foo 1.2.0", "dep_kinds": [{"kind": null}]}]},
    {"id": "foo 1.2.0", "deps": []}
  ]}
}
EOF`)

	md, err := (&CargoResolver{Cargo: cargo}).Resolve(context.Background(), link, ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	pkgs, err := Normalize(md, Options{LocalRoot: link})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	foo, ok := byName(pkgs)["foo"]
	if !ok {
		t.Fatal("foo missing from normalized packages")
	}
	if !foo.IsLocal {
		t.Errorf("foo under symlinked root %s reported non-local (manifest %s)", link, foo.ManifestPath)
	}
}

func TestWithin(t *testing.T) {
	link, target := symlinkedCheckout(t)
	if err := os.MkdirAll(filepath.Join(target, "foo", "v1"), 0o755); err != nil {
		t.Fatal(err)
	}
	resolved := RealPath(filepath.Join(target, "foo", "v1"))

	tests := []struct {
		name       string
		root, path string
		want       bool
	}{
		{"empty root", "", "/anywhere", true},
		{"plain child", "/src/third_party", "/src/third_party/foo/v1", true},
		{"sibling prefix", "/src/third", "/src/third_party/foo", false},
		{"parent", "/src/third_party", "/src", false},
		{"symlinked root", link, resolved, true},
		{"symlinked path", resolved, filepath.Join(link, "foo", "v1"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := within(tt.root, tt.path); got != tt.want {
				t.Errorf("within(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
			}
		})
	}
}
