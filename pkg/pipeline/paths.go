package pipeline

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/gn"
)

// RootEnv names the environment variable overriding the source root.
const RootEnv = "CRATEGEN_ROOT"

// Source-root-relative locations.
const (
	ThirdPartyDir   = "third_party/rust"
	ManifestFile    = "third_party.toml"
	StdConfigFile   = "build/rust/std/gnrt_config.toml"
	StdFakeRootDir  = "build/rust/std/fake_root"
	StdBuildDir     = "build/rust/std/rules"
	RustSrcDir      = "third_party/rust-toolchain/lib/rustlib/src/rust"
	RustSrcVendored = "vendor"
)

// Paths holds absolute locations derived from the source root.
type Paths struct {
	Root          string
	ThirdParty    string
	Manifest      string
	StdConfig     string
	StdFakeRoot   string
	StdBuild      string
	RustSrc       string
	RustSrcVendor string
}

// NewPaths derives every location from root.
func NewPaths(root string) Paths {
	root = filepath.Clean(root)
	thirdParty := filepath.Join(root, filepath.FromSlash(ThirdPartyDir))
	rustSrc := filepath.Join(root, filepath.FromSlash(RustSrcDir))
	return Paths{
		Root:          root,
		ThirdParty:    thirdParty,
		Manifest:      filepath.Join(thirdParty, ManifestFile),
		StdConfig:     filepath.Join(root, filepath.FromSlash(StdConfigFile)),
		StdFakeRoot:   filepath.Join(root, filepath.FromSlash(StdFakeRootDir)),
		StdBuild:      filepath.Join(root, filepath.FromSlash(StdBuildDir)),
		RustSrc:       rustSrc,
		RustSrcVendor: filepath.Join(rustSrc, RustSrcVendored),
	}
}

// Layout returns the GN label mapping for these paths.
func (p Paths) Layout() gn.Layout {
	return gn.Layout{
		Root:       p.Root,
		ThirdParty: p.ThirdParty,
		RustSrc:    p.RustSrc,
		StdBuild:   p.StdBuild,
	}
}

// StdBuildFile is the path of the std BUILD.gn.
func (p Paths) StdBuildFile() string {
	return gn.BuildFilePath(p.StdBuild)
}

// ResolveRoot returns explicit if set, then $CRATEGEN_ROOT, then the
// nearest ancestor of the working directory containing third_party/rust.
// Symlinks are resolved so that paths match those cargo reports.
func ResolveRoot(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(RootEnv)
	}
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, err, "resolve %s", explicit)
		}
		return deps.RealPath(abs), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "get working directory")
	}
	root, err := FindRoot(wd)
	if err != nil {
		return "", err
	}
	return deps.RealPath(root), nil
}

// FindRoot walks up from start to the first directory containing
// third_party/rust.
func FindRoot(start string) (string, error) {
	dir := filepath.Clean(start)
	for {
		if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(ThirdPartyDir))); err == nil && fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrCodeInvalidInput,
				"no %s directory above %s; pass --root or set %s", ThirdPartyDir, start, RootEnv)
		}
		dir = parent
	}
}
