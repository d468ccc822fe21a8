package version

import (
	"cmp"
	"strings"
)

// Identifier is one dot-separated component of a prerelease or build tag.
//
// Identifiers compare differently depending on whether they are digits-only.
type Identifier struct {
	IsDigitsOnly bool
	Value        string
}

// ParseIdentifier classifies a single tag component.
func ParseIdentifier(s string) Identifier {
	if s == "" {
		return Identifier{Value: s}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Identifier{Value: s}
		}
	}
	return Identifier{IsDigitsOnly: true, Value: s}
}

// CompareIdentifiers compares two tag components:
//   - digits-only identifiers sort BEFORE alphanumeric ones
//   - digits-only identifiers compare numerically, at any length
//   - alphanumeric identifiers compare lexically in ASCII order
func CompareIdentifiers(a, b Identifier) int {
	if a.IsDigitsOnly != b.IsDigitsOnly {
		if a.IsDigitsOnly {
			return -1
		}
		return 1
	}

	if a.IsDigitsOnly {
		return compareNumeric(a.Value, b.Value)
	}

	return strings.Compare(a.Value, b.Value)
}

// compareNumeric compares two digit strings by value without converting
// them, so nightly timestamps longer than uint64 still order correctly.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareDotted compares two dot-separated tags component by component.
// When one tag is a prefix of the other, the shorter one sorts first.
func compareDotted(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range min(len(aParts), len(bParts)) {
		if c := CompareIdentifiers(ParseIdentifier(aParts[i]), ParseIdentifier(bParts[i])); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(aParts), len(bParts))
}
