package crates

import (
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/errors"
)

func TestEpochFromVersionReq(t *testing.T) {
	tests := []struct {
		req  string
		want Epoch
	}{
		{"1", Epoch{Major: 1}},
		{"1.2", Epoch{Major: 1}},
		{"^1.2.3", Epoch{Major: 1}},
		{"=2.0.1", Epoch{Major: 2}},
		{"~1.4", Epoch{Major: 1}},
		{"1.*", Epoch{Major: 1}},
		{"0.3", Epoch{Minor: 3}},
		{"^0.3.1", Epoch{Minor: 3}},
		{"~0.4", Epoch{Minor: 4}},
		{"0.3.*", Epoch{Minor: 3}},
		{"0.0.5", Epoch{Patch: 5}},
		{"=0.0.5", Epoch{Patch: 5}},
		{"1.0.0-alpha.1", Epoch{Major: 1}},
		{" 0.12 ", Epoch{Minor: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.req, func(t *testing.T) {
			got, err := EpochFromVersionReq(tt.req)
			if err != nil {
				t.Fatalf("EpochFromVersionReq(%q) error = %v", tt.req, err)
			}
			if got != tt.want {
				t.Errorf("EpochFromVersionReq(%q) = %v, want %v", tt.req, got, tt.want)
			}
		})
	}
}

func TestEpochFromVersionReqRejects(t *testing.T) {
	for _, req := range []string{"", "*", "0.*", "^0", "0.0", "0.0.*", ">=1.0, <3.0", "not-a-version"} {
		t.Run(req, func(t *testing.T) {
			_, err := EpochFromVersionReq(req)
			if err == nil {
				t.Fatalf("EpochFromVersionReq(%q) error = nil, want error", req)
			}
			if !errors.Is(err, errors.ErrCodeMalformedVersionRequirement) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedVersionRequirement)
			}
		})
	}
}

func TestEpochSharedIffSameBucket(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"^1.2", "^1.5", true},
		{"1.2", "1.99.3", true},
		{"^0.3", "^0.4", false},
		{"0.3.1", "0.3.9", true},
		{"0.0.1", "0.0.2", false},
		{"1", "2", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, err := EpochFromVersionReq(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := EpochFromVersionReq(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if (a == b) != tt.same {
				t.Errorf("epoch(%q) == epoch(%q) is %v, want %v", tt.a, tt.b, a == b, tt.same)
			}
		})
	}
}

func TestEpochFromVersion(t *testing.T) {
	tests := []struct {
		version string
		req     string
	}{
		{"1.9.3", "^1.2"},
		{"0.3.17", "0.3"},
		{"0.0.5", "=0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v := semver.MustParse(tt.version)
			want, err := EpochFromVersionReq(tt.req)
			if err != nil {
				t.Fatal(err)
			}
			if got := EpochFromVersion(v); got != want {
				t.Errorf("EpochFromVersion(%s) = %v, want %v", tt.version, got, want)
			}
		})
	}
}

func TestEpochStringRoundTrip(t *testing.T) {
	tests := []struct {
		epoch Epoch
		dir   string
		label string
	}{
		{Epoch{Major: 1}, "v1", "1"},
		{Epoch{Major: 12}, "v12", "12"},
		{Epoch{Minor: 3}, "v0_3", "0.3"},
		{Epoch{Patch: 5}, "v0_0_5", "0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if got := tt.epoch.String(); got != tt.dir {
				t.Errorf("String() = %q, want %q", got, tt.dir)
			}
			if got := tt.epoch.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			parsed, ok := ParseEpochDir(tt.dir)
			if !ok || parsed != tt.epoch {
				t.Errorf("ParseEpochDir(%q) = %v, %v", tt.dir, parsed, ok)
			}
		})
	}
}

func TestParseEpochDirRejects(t *testing.T) {
	for _, name := range []string{"", "v", "1", "v0", "v01", "v1_2", "v0_0", "v0_3_1", "crate", "vx"} {
		if e, ok := ParseEpochDir(name); ok {
			t.Errorf("ParseEpochDir(%q) = %v, want rejection", name, e)
		}
	}
}
