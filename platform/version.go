package platform

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a platform version as seen through a Spec: the platform and
// version a client reported, and the platform and version builds are looked
// up under.
type Version struct {
	spec          Spec
	raw           string
	arch          string
	mappedVersion string

	// Inherited from the canonical platform's Spec when the client's Spec
	// leaves them unset.
	majorOnly    bool
	fallbackArch string
	windowFloor  string
}

// Spec returns the Spec the version was resolved through.
func (v Version) Spec() Spec { return v.spec }

// Name returns the client's platform name.
func (v Version) Name() string { return v.spec.Name }

// RawVersion returns the client's platform version.
func (v Version) RawVersion() string { return v.raw }

// Arch returns the normalized machine architecture.
func (v Version) Arch() string { return v.arch }

// MappedName returns the platform name builds are published under.
func (v Version) MappedName() string { return v.spec.MappedName() }

// MappedVersion returns the platform version builds are published under.
func (v Version) MappedVersion() string { return v.mappedVersion }

// MajorOnly reports whether only the first version component is compared.
func (v Version) MajorOnly() bool { return v.majorOnly }

// FallbackArch returns the architecture to try when Arch has no builds.
func (v Version) FallbackArch() string { return v.fallbackArch }

// WindowFloor returns the lowest platform version visible to requests at or
// above it, or "" if there is none.
func (v Version) WindowFloor() string { return v.windowFloor }

// Yolo reports whether builds are served from an untested related platform.
func (v Version) Yolo() bool { return v.spec.Yolo }

// String renders the version as "name version (mapped-name mapped-version)".
func (v Version) String() string {
	s := v.spec.Name + " " + v.raw
	if v.MappedName() != v.spec.Name || v.mappedVersion != v.raw {
		s += " (" + v.MappedName() + " " + v.mappedVersion + ")"
	}
	return s
}

// Compare orders two platform versions of the same mapped platform.
//
// The first three components of the mapped versions are compared in turn,
// as integers when both parse as integers and as strings otherwise, so that
// versions such as "2008r2" still order. Missing components count as "0".
// When either side is MajorOnly only the first component is compared.
func Compare(a, b Version) (int, error) {
	if a.MappedName() != b.MappedName() {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrPlatformMismatch, a.MappedName(), b.MappedName())
	}
	return compareVersions(a.mappedVersion, b.mappedVersion, a.majorOnly || b.majorOnly), nil
}

// Less reports whether v sorts before other. Versions of different mapped
// platforms never sort before one another.
func (v Version) Less(other Version) bool {
	c, err := Compare(v, other)
	return err == nil && c < 0
}

func compareVersions(a, b string, majorOnly bool) int {
	ac, bc := components(a), components(b)
	n := len(ac)
	if majorOnly {
		n = 1
	}
	for i := range n {
		if c := compareComponent(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	return 0
}

func components(v string) [3]string {
	out := [3]string{"0", "0", "0"}
	for i, p := range strings.SplitN(v, ".", 3) {
		if p != "" {
			out[i] = p
		}
	}
	return out
}

func compareComponent(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}
