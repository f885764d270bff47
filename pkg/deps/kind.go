package deps

import "strings"

// Kind is how a package depends on another.
type Kind uint8

const (
	Normal Kind = iota
	Build
	Dev
)

// String returns the cargo spelling of the kind.
func (k Kind) String() string {
	switch k {
	case Build:
		return "build"
	case Dev:
		return "dev"
	default:
		return "normal"
	}
}

func parseKind(s *string) Kind {
	if s == nil {
		return Normal
	}
	switch *s {
	case "build":
		return Build
	case "dev":
		return Dev
	default:
		return Normal
	}
}

// KindSet is a set of dependency kinds. The zero value is empty.
type KindSet uint8

// KindsOf returns a set holding ks.
func KindsOf(ks ...Kind) KindSet {
	var s KindSet
	for _, k := range ks {
		s = s.With(k)
	}
	return s
}

// With returns s plus k.
func (s KindSet) With(k Kind) KindSet { return s | 1<<k }

// Without returns s minus k.
func (s KindSet) Without(k Kind) KindSet { return s &^ (1 << k) }

// Has reports whether s contains k.
func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

// Empty reports whether s has no kinds.
func (s KindSet) Empty() bool { return s == 0 }

// Intersects reports whether s and o share a kind.
func (s KindSet) Intersects(o KindSet) bool { return s&o != 0 }

// Only reports whether k is the single member of s.
func (s KindSet) Only(k Kind) bool { return s == KindsOf(k) }

// Kinds returns the members in Normal, Build, Dev order.
func (s KindSet) Kinds() []Kind {
	var out []Kind
	for _, k := range []Kind{Normal, Build, Dev} {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String returns the members joined by commas, e.g. "normal,build".
func (s KindSet) String() string {
	parts := make([]string, 0, 3)
	for _, k := range s.Kinds() {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, ",")
}
