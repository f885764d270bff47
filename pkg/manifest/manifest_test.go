package manifest

import (
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/errors"
)

const sampleManifest = `
[workspace]

[dependencies]
foo = "1.2"
bindgen = { version = "0.69", allow-first-party-usage = false, build-script-outputs = ["bindings.rs"] }
cxx = { version = "1", features = ["c++17"], default-features = false, gn-variables-lib = "configs = [ \"//build:cxx\" ]" }

[dev-dependencies]
bar = { version = "0.3", allow-first-party-usage = false }
rstest = "0.18"

[build-dependencies]
cc = "1"
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := slices.Sorted(maps.Keys(m.Dependencies)); !reflect.DeepEqual(got, []string{"bindgen", "cxx", "foo"}) {
		t.Errorf("Dependencies = %v", got)
	}
	if got := len(m.DevDependencies); got != 2 {
		t.Errorf("len(DevDependencies) = %d, want 2", got)
	}
	if got := len(m.BuildDependencies); got != 1 {
		t.Errorf("len(BuildDependencies) = %d, want 1", got)
	}

	if _, ok := m.Dependencies["foo"].(ShortDependency); !ok {
		t.Errorf("foo = %T, want ShortDependency", m.Dependencies["foo"])
	}

	bindgen, ok := m.Dependencies["bindgen"].(FullDependency)
	if !ok {
		t.Fatalf("bindgen = %T, want FullDependency", m.Dependencies["bindgen"])
	}
	if bindgen.AllowFirstPartyUsage {
		t.Error("bindgen AllowFirstPartyUsage = true, want false")
	}
	if !reflect.DeepEqual(bindgen.BuildScriptOutputs, []string{"bindings.rs"}) {
		t.Errorf("bindgen BuildScriptOutputs = %v", bindgen.BuildScriptOutputs)
	}

	cxx := m.Dependencies["cxx"].(FullDependency)
	if !cxx.AllowFirstPartyUsage {
		t.Error("cxx AllowFirstPartyUsage should default to true")
	}
	if cxx.DefaultFeatures == nil || *cxx.DefaultFeatures {
		t.Errorf("cxx DefaultFeatures = %v, want false", cxx.DefaultFeatures)
	}
	if cxx.GNVariablesLib == "" {
		t.Error("cxx GNVariablesLib is empty")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "[dependencies\nfoo = 1"},
		{"number version", "[dependencies]\nfoo = 1"},
		{"missing version", "[dependencies]\nfoo = { features = [\"x\"] }"},
		{"unknown key", "[dependencies]\nfoo = { version = \"1\", colour = \"red\" }"},
		{"unknown table", "[package]\nname = \"x\""},
		{"bad crate name", "[dependencies]\n\"../evil\" = \"1\""},
		{"bad output", "[dependencies]\nfoo = { version = \"1\", build-script-outputs = [\"../x.rs\"] }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeMalformedManifest) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedManifest)
			}
		})
	}
}

func TestDeclarations(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	decls, err := m.Declarations()
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}
	if len(decls) != 5 {
		t.Fatalf("len(decls) = %d, want 5", len(decls))
	}

	md := Index(decls)
	tests := []struct {
		crate crates.VendoredCrate
		want  crates.Visibility
	}{
		{crates.VendoredCrate{Name: "foo", Epoch: crates.Epoch{Major: 1}}, crates.Public},
		{crates.VendoredCrate{Name: "bindgen", Epoch: crates.Epoch{Minor: 69}}, crates.ThirdParty},
		{crates.VendoredCrate{Name: "bar", Epoch: crates.Epoch{Minor: 3}}, crates.ThirdParty},
		{crates.VendoredCrate{Name: "rstest", Epoch: crates.Epoch{Minor: 18}}, crates.TestOnlyAndThirdParty},
		{crates.VendoredCrate{Name: "transitive", Epoch: crates.Epoch{Major: 1}}, crates.ThirdParty},
	}
	for _, tt := range tests {
		t.Run(tt.crate.String(), func(t *testing.T) {
			if got := md.Visibility(tt.crate); got != tt.want {
				t.Errorf("Visibility(%s) = %v, want %v", tt.crate, got, tt.want)
			}
		})
	}

	bindgen := md[crates.VendoredCrate{Name: "bindgen", Epoch: crates.Epoch{Minor: 69}}]
	if !reflect.DeepEqual(bindgen.BuildScriptOutputs, []string{"bindings.rs"}) {
		t.Errorf("bindgen outputs = %v", bindgen.BuildScriptOutputs)
	}
	cxx := md[crates.VendoredCrate{Name: "cxx", Epoch: crates.Epoch{Major: 1}}]
	if cxx.ExtraVariables == "" {
		t.Error("cxx ExtraVariables is empty")
	}
}

func TestDeclarationsRuntimeWinsOverDev(t *testing.T) {
	m, err := Parse([]byte(`
[dependencies]
foo = "1"
[dev-dependencies]
foo = { version = "1.4", build-script-outputs = ["x.rs"] }
`))
	if err != nil {
		t.Fatal(err)
	}
	decls, err := m.Declarations()
	if err != nil {
		t.Fatal(err)
	}
	md := Index(decls)
	foo := md[crates.VendoredCrate{Name: "foo", Epoch: crates.Epoch{Major: 1}}]
	if foo.Visibility != crates.Public {
		t.Errorf("Visibility = %v, want public", foo.Visibility)
	}
	if len(foo.BuildScriptOutputs) != 0 {
		t.Errorf("BuildScriptOutputs = %v, want none", foo.BuildScriptOutputs)
	}
}

func TestDeclarationsBadRequirement(t *testing.T) {
	m, err := Parse([]byte("[dependencies]\nfoo = \"*\""))
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Declarations()
	if !errors.Is(err, errors.ErrCodeMalformedVersionRequirement) {
		t.Errorf("Declarations() error = %v, want MALFORMED_VERSION_REQUIREMENT", err)
	}
}

func TestMergeDevDependenciesIdempotent(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}

	m.MergeDevDependencies()
	once := maps.Clone(m.Dependencies)
	m.MergeDevDependencies()

	if !reflect.DeepEqual(once, m.Dependencies) {
		t.Errorf("second merge changed dependencies: %v -> %v", once, m.Dependencies)
	}
	want := []string{"bar", "bindgen", "cxx", "foo", "rstest"}
	if got := slices.Sorted(maps.Keys(m.Dependencies)); !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
	if len(m.DevDependencies) != 0 {
		t.Errorf("DevDependencies = %v, want empty", m.DevDependencies)
	}
	if _, ok := m.Dependencies["cc"]; ok {
		t.Error("build-dependencies must not be merged")
	}
}

func TestMergeDevDependenciesDevEntryWins(t *testing.T) {
	m, err := Parse([]byte(`
[dependencies]
foo = "1"
bar = "0.3"

[dev-dependencies]
foo = "2"
`))
	if err != nil {
		t.Fatal(err)
	}
	m.MergeDevDependencies()

	tests := []struct {
		name string
		want string
	}{
		{"foo", "2"},
		{"bar", "0.3"},
	}
	for _, tt := range tests {
		dep, ok := m.Dependencies[tt.name]
		if !ok {
			t.Errorf("%s missing after merge", tt.name)
			continue
		}
		if got := dep.Requirement(); got != tt.want {
			t.Errorf("%s requirement = %q, want %q", tt.name, got, tt.want)
		}
	}
}
