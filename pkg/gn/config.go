package gn

import (
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crategen/pkg/errors"
)

// BuildConfig is the std build configuration (gnrt_config.toml). Flags in
// AllCrates apply to every rule; PerCrate entries are appended for the
// named package.
type BuildConfig struct {
	AllCrates CrateConfig            `toml:"all-crates"`
	PerCrate  map[string]CrateConfig `toml:"per-crate-config"`
}

// CrateConfig holds extra flags for rules.
type CrateConfig struct {
	Rustflags []string `toml:"rustflags"`
	Rustenv   []string `toml:"rustenv"`
	Cfg       []string `toml:"cfg"`
	Features  []string `toml:"features"`
}

// LoadBuildConfig decodes a build configuration file. Unknown keys are
// rejected.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	var cfg BuildConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read build config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "build config %s: unknown key %s", path, undecoded[0])
	}
	return &cfg, nil
}

// For returns the merged configuration for package name.
func (c *BuildConfig) For(name string) CrateConfig {
	if c == nil {
		return CrateConfig{}
	}
	per := c.PerCrate[name]
	return CrateConfig{
		Rustflags: concat(c.AllCrates.Rustflags, per.Rustflags),
		Rustenv:   concat(c.AllCrates.Rustenv, per.Rustenv),
		Cfg:       concat(c.AllCrates.Cfg, per.Cfg),
		Features:  concat(c.AllCrates.Features, per.Features),
	}
}

func concat(a, b []string) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	return slices.Concat(a, b)
}
