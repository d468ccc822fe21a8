// Package version implements parsing and ordering of installer package versions.
//
// Package versions in build manifests come from several eras of release
// tooling, so no single grammar covers them. Each supported Format owns one
// grammar and maps its captures into the common Version fields:
//
//	MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]           SemVer
//	MAJOR.MINOR.PATCH[.PRERELEASE][-ITERATION]       Rubygems
//	MAJOR.MINOR.PATCH[-PRE]-COMMITS-gSHA[-ITERATION] GitDescribe
//	MAJOR.MINOR.PATCH[-PRE][+TIMESTAMP.git.N.SHA]    ProjectSemVer
//	MAJOR[.MINOR]                                    PartialSemVer
//
// Parse tries the formats in a fixed order and returns the first match.
//
// Ordering follows SemVer 2.0.0 precedence with two extensions:
//   - A BUILD component marks a nightly and sorts AFTER the same version
//     without one (1.0.0 < 1.0.0+20140101000000.git.1.abcdef0).
//   - An ITERATION (packaging revision) breaks remaining ties.
package version

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Version is a parsed package version.
//
// Version is an immutable value; it is safe to copy, share and use as a
// cache value across goroutines.
type Version struct {
	raw        string
	format     Format
	major      uint64
	minor      uint64
	patch      uint64
	prerelease string
	build      string

	iteration    int
	hasIteration bool

	// precision is the number of release components the input spelled out.
	// It is 3 for every format except PartialSemVer.
	precision int
}

// String returns the version exactly as it was parsed.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v is the zero Version (never parsed).
func (v Version) IsZero() bool {
	return v.raw == "" && v.format == 0
}

// Format returns the format that parsed v.
func (v Version) Format() Format {
	return v.format
}

// Major returns the major version number.
func (v Version) Major() uint64 { return v.major }

// Minor returns the minor version number.
func (v Version) Minor() uint64 { return v.minor }

// Patch returns the patch version number.
func (v Version) Patch() uint64 { return v.patch }

// Prerelease returns the prerelease tag (e.g. "rc.1"), or "" if absent.
func (v Version) Prerelease() string { return v.prerelease }

// Build returns the build (nightly) tag, or "" if absent.
func (v Version) Build() string { return v.build }

// Iteration returns the packaging iteration and whether one was present.
func (v Version) Iteration() (int, bool) { return v.iteration, v.hasIteration }

// IsPartial reports whether v spelled out fewer than three release
// components, i.e. it is a version prefix such as "12" or "12.1".
func (v Version) IsPartial() bool {
	return v.precision > 0 && v.precision < 3
}

// Precision returns how many of major, minor and patch were given.
func (v Version) Precision() int {
	return v.precision
}

// HasPrerelease reports whether v carries a prerelease tag.
func (v Version) HasPrerelease() bool { return v.prerelease != "" }

// HasBuild reports whether v carries a build (nightly) tag.
func (v Version) HasBuild() bool { return v.build != "" }

// IsRelease reports whether v is a plain release: no prerelease, no build.
func (v Version) IsRelease() bool {
	return v.prerelease == "" && v.build == ""
}

// IsPrerelease reports whether v is a prerelease without a build tag.
func (v Version) IsPrerelease() bool {
	return v.prerelease != "" && v.build == ""
}

// IsReleaseNightly reports whether v is a nightly of a release line.
func (v Version) IsReleaseNightly() bool {
	return v.prerelease == "" && v.build != ""
}

// IsPrereleaseNightly reports whether v is a nightly of a prerelease line.
func (v Version) IsPrereleaseNightly() bool {
	return v.prerelease != "" && v.build != ""
}

// SameRelease reports whether v and other share major, minor and patch.
func (v Version) SameRelease(other Version) bool {
	return v.major == other.major && v.minor == other.minor && v.patch == other.patch
}

// SemverString renders v as MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
// Iterations have no SemVer spelling and are dropped.
func (v Version) SemverString() string {
	var b strings.Builder
	b.WriteString(v.releaseString())
	if v.prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.prerelease)
	}
	if v.build != "" {
		b.WriteByte('+')
		b.WriteString(v.build)
	}
	return b.String()
}

// RubygemsString renders v as MAJOR.MINOR.PATCH[.PRERELEASE][-ITERATION].
// Build tags have no Rubygems spelling and are dropped.
func (v Version) RubygemsString() string {
	var b strings.Builder
	b.WriteString(v.releaseString())
	if v.prerelease != "" {
		b.WriteByte('.')
		b.WriteString(v.prerelease)
	}
	if v.hasIteration {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(v.iteration))
	}
	return b.String()
}

func (v Version) releaseString() string {
	return strconv.FormatUint(v.major, 10) + "." +
		strconv.FormatUint(v.minor, 10) + "." +
		strconv.FormatUint(v.patch, 10)
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after other.
//
// Order of precedence:
//  1. major, minor, patch numerically
//  2. a prerelease sorts before the same release without one
//  3. prereleases compare component-wise (see compareDotted)
//  4. no build sorts before a build (nightlies follow their base version)
//  5. builds compare component-wise
//  6. no iteration sorts before an iteration; iterations compare numerically
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.major, other.major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.minor, other.minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.patch, other.patch); c != 0 {
		return c
	}

	switch {
	case v.prerelease != "" && other.prerelease == "":
		return -1
	case v.prerelease == "" && other.prerelease != "":
		return 1
	case v.prerelease != "":
		if c := compareDotted(v.prerelease, other.prerelease); c != 0 {
			return c
		}
	}

	// Polarity is the opposite of prerelease: the tagged one is newer.
	switch {
	case v.build == "" && other.build != "":
		return -1
	case v.build != "" && other.build == "":
		return 1
	case v.build != "":
		if c := compareDotted(v.build, other.build); c != 0 {
			return c
		}
	}

	switch {
	case !v.hasIteration && other.hasIteration:
		return -1
	case v.hasIteration && !other.hasIteration:
		return 1
	case v.hasIteration:
		return cmp.Compare(v.iteration, other.iteration)
	}

	return 0
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other have the same major, minor, patch,
// prerelease and build.
//
// Iteration is not part of equality even though Compare orders by it:
// "1.0.0-1" and "1.0.0-2" are Equal but Compare as -1.
func (v Version) Equal(other Version) bool {
	return v.SameRelease(other) &&
		v.prerelease == other.prerelease &&
		v.build == other.build
}

// Compare compares two versions. It is the package-level form of
// Version.Compare, suitable for slices.SortFunc.
func Compare(a, b Version) int {
	return a.Compare(b)
}

// Sort sorts versions in ascending order.
func Sort(versions []Version) {
	slices.SortStableFunc(versions, Compare)
}

// Max returns the highest of the given versions. It returns false when
// versions is empty.
func Max(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	return slices.MaxFunc(versions, Compare), true
}
