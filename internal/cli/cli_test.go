package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/observability"
	"github.com/matzehuels/crategen/pkg/pipeline"
	"github.com/matzehuels/crategen/pkg/reconcile"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(observability.Reset)
	var out, errOut bytes.Buffer
	c := New(&out, &errOut, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	paths := pipeline.NewPaths(dir)
	files := map[string]string{
		paths.Manifest: "[dependencies]\nfoo = \"1.2\"\n",
		filepath.Join(paths.ThirdParty, "foo", "v1", "crate", "Cargo.toml"): "",
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, &bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"gen", "graph"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "crategen version ") {
		t.Errorf("--version output = %q", stdout)
	}
}

func TestGenOutputCargoToml(t *testing.T) {
	root := sourceTree(t)
	stdout, _, err := execute(t, "gen", "--output-cargo-toml", "--root", root)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`name = "chromium"`, "foo"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Cargo.toml missing %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(filepath.Join(pipeline.NewPaths(root).ThirdParty, "Cargo.toml")); !os.IsNotExist(err) {
		t.Error("--output-cargo-toml should not write Cargo.toml")
	}
}

func TestGenFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"cargo toml for std", []string{"gen", "--for-std", "--output-cargo-toml", "--root", "."}},
		{"negative jobs", []string{"gen", "--jobs=-1", "--root", "."}},
		{"positional args", []string{"gen", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenResolverFailure(t *testing.T) {
	root := sourceTree(t)
	missing := filepath.Join(t.TempDir(), "no-such-cargo")
	_, _, err := execute(t, "gen", "--root", root, "--cargo", missing, "-v")
	if !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Errorf("error = %v, want EXTERNAL_TOOL_FAILURE", err)
	}
	if _, statErr := os.Stat(filepath.Join(pipeline.NewPaths(root).ThirdParty, "foo", "v1", "BUILD.gn")); !os.IsNotExist(statErr) {
		t.Error("no build file should be written when resolution fails")
	}
}

func TestPrintError(t *testing.T) {
	var diags errors.Diagnostics
	diags.Add(
		errors.New(errors.ErrCodeMissingVendoredUnit, "missing dependency: foo v1\n    chromium 0.1.0 -> foo 1.0.0 (normal)"),
		errors.New(errors.ErrCodeUnusedVendoredUnit, "unused crate: bar v2"),
	)

	tests := []struct {
		name    string
		err     error
		want    []string
		wantBug bool
	}{
		{
			name: "diagnostics one per line",
			err:  diags.Err(errors.ErrCodeReconciliation, "dependency resolution failed"),
			want: []string{
				"missing dependency: foo v1",
				"chromium 0.1.0 -> foo 1.0.0 (normal)",
				"unused crate: bar v2",
				"dependency resolution failed",
			},
		},
		{
			name: "wrapped cause",
			err:  errors.Wrap(errors.ErrCodeIO, os.ErrPermission, "write BUILD.gn"),
			want: []string{"write BUILD.gn: permission denied"},
		},
		{
			name:    "internal defect",
			err:     errors.New(errors.ErrCodeSynthesisMismatch, "no rule for foo v1"),
			want:    []string{"no rule for foo v1"},
			wantBug: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if got := strings.Contains(out, "this is a bug"); got != tt.wantBug {
				t.Errorf("bug notice = %v, want %v:\n%s", got, tt.wantBug, out)
			}
		})
	}
}

func TestPrintErrorNil(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("PrintError(nil) wrote %q", buf.String())
	}
}

func TestHighlighted(t *testing.T) {
	if got := highlighted(nil); got != nil {
		t.Errorf("highlighted(nil) = %v", got)
	}

	missing := &deps.Package{Name: "foo", Version: semver.MustParse("1.0.0")}
	remote := &deps.Package{Name: "bar", Version: semver.MustParse("0.3.1")}
	r := &reconcile.Report{
		Missing:  []*deps.Package{missing},
		NonLocal: []*deps.Package{remote},
		Unused:   []crates.VendoredCrate{{Name: "baz", Epoch: crates.Epoch{Major: 2}}},
	}
	got := highlighted(r)
	want := []string{"foo 1.0.0", "bar 0.3.1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("highlighted = %v, want %v", got, want)
	}
}
