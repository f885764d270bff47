package crates

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/errors"
)

// Epoch is a semver compatibility bucket. Only the leading non-zero
// component and everything before it are significant:
//
//   - major >= 1:              {Major}
//   - major == 0, minor >= 1:  {0, Minor}
//   - major == 0, minor == 0:  {0, 0, Patch}
//
// Values built by this package are normalized, so == compares buckets.
type Epoch struct {
	Major uint64
	Minor uint64
	Patch uint64
}

func newEpoch(major, minor, patch uint64) Epoch {
	switch {
	case major > 0:
		return Epoch{Major: major}
	case minor > 0:
		return Epoch{Minor: minor}
	default:
		return Epoch{Patch: patch}
	}
}

// EpochFromVersion returns the bucket of an exact version.
func EpochFromVersion(v *semver.Version) Epoch {
	return newEpoch(v.Major(), v.Minor(), v.Patch())
}

// EpochFromVersionString parses an exact version such as "1.2.3".
func EpochFromVersionString(s string) (Epoch, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Epoch{}, errors.Wrap(errors.ErrCodeMalformedVersionRequirement, err, "invalid version %q", s)
	}
	return EpochFromVersion(v), nil
}

// reqPattern matches the requirement forms cargo uses in a single
// comparator: exact (=1.2.3), caret (^1.2), tilde (~1.2), wildcard (1.*)
// and bare (1.2). Build metadata and pre-release suffixes are allowed.
var reqPattern = regexp.MustCompile(`^(=|\^|~)?\s*v?(\d+)(?:\.(\d+|\*|x|X))?(?:\.(\d+|\*|x|X))?(?:[-+][0-9A-Za-z.+-]*)?$`)

// EpochFromVersionReq derives the epoch a version requirement resolves into.
// Requirements that span more than one epoch ("*", "0.*", "^0.0") or use
// range operators are rejected with MALFORMED_VERSION_REQUIREMENT.
func EpochFromVersionReq(req string) (Epoch, error) {
	trimmed := strings.TrimSpace(req)
	if _, err := semver.NewConstraint(trimmed); err != nil {
		return Epoch{}, errors.Wrap(errors.ErrCodeMalformedVersionRequirement, err, "invalid version requirement %q", req)
	}

	m := reqPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Epoch{}, errors.New(errors.ErrCodeMalformedVersionRequirement,
			"unsupported version requirement %q: want exact, caret, tilde or wildcard", req)
	}

	major, _ := strconv.ParseUint(m[2], 10, 64)
	if major > 0 {
		return Epoch{Major: major}, nil
	}

	minor, ok := component(m[3])
	if !ok {
		return Epoch{}, spansEpochs(req)
	}
	if minor > 0 {
		return Epoch{Minor: minor}, nil
	}

	patch, ok := component(m[4])
	if !ok {
		return Epoch{}, spansEpochs(req)
	}
	return Epoch{Patch: patch}, nil
}

func component(s string) (uint64, bool) {
	if s == "" || s == "*" || s == "x" || s == "X" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

func spansEpochs(req string) error {
	return errors.New(errors.ErrCodeMalformedVersionRequirement,
		"version requirement %q matches more than one epoch", req)
}

// ParseEpochDir parses a directory name produced by [Epoch.String].
func ParseEpochDir(name string) (Epoch, bool) {
	rest, ok := strings.CutPrefix(name, "v")
	if !ok || rest == "" {
		return Epoch{}, false
	}
	parts := strings.Split(rest, "_")
	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil || (len(p) > 1 && p[0] == '0') {
			return Epoch{}, false
		}
		nums[i] = n
	}

	var e Epoch
	switch {
	case len(nums) == 1 && nums[0] > 0:
		e = Epoch{Major: nums[0]}
	case len(nums) == 2 && nums[0] == 0 && nums[1] > 0:
		e = Epoch{Minor: nums[1]}
	case len(nums) == 3 && nums[0] == 0 && nums[1] == 0:
		e = Epoch{Patch: nums[2]}
	default:
		return Epoch{}, false
	}
	return e, true
}

// String returns the directory form: v1, v0_3 or v0_0_5.
func (e Epoch) String() string {
	switch {
	case e.Major > 0:
		return fmt.Sprintf("v%d", e.Major)
	case e.Minor > 0:
		return fmt.Sprintf("v0_%d", e.Minor)
	default:
		return fmt.Sprintf("v0_0_%d", e.Patch)
	}
}

// Label returns the dotted form used inside GN files: 1, 0.3 or 0.0.5.
func (e Epoch) Label() string {
	return strings.ReplaceAll(strings.TrimPrefix(e.String(), "v"), "_", ".")
}

// Compare orders epochs by their components.
func (e Epoch) Compare(o Epoch) int {
	return cmp.Or(
		cmp.Compare(e.Major, o.Major),
		cmp.Compare(e.Minor, o.Minor),
		cmp.Compare(e.Patch, o.Patch),
	)
}
