package selection

import "github.com/albertocavalcante/go-pkgresolve/version"

// Bucket is one of the four disjoint classes of versions.
type Bucket int

const (
	// Release is a plain release: no prerelease, no build.
	Release Bucket = iota
	// Prerelease has a prerelease tag and no build.
	Prerelease
	// ReleaseNightly has a build tag and no prerelease.
	ReleaseNightly
	// PrereleaseNightly has both a prerelease and a build tag.
	PrereleaseNightly
)

// BucketFor returns the bucket requested by the prerelease and nightly flags.
func BucketFor(prerelease, nightly bool) Bucket {
	switch {
	case prerelease && nightly:
		return PrereleaseNightly
	case nightly:
		return ReleaseNightly
	case prerelease:
		return Prerelease
	default:
		return Release
	}
}

// Matches reports whether v belongs to bucket b.
func (b Bucket) Matches(v version.Version) bool {
	switch b {
	case PrereleaseNightly:
		return v.IsPrereleaseNightly()
	case ReleaseNightly:
		return v.IsReleaseNightly()
	case Prerelease:
		return v.IsPrerelease()
	default:
		return v.IsRelease()
	}
}

// String returns the bucket name.
func (b Bucket) String() string {
	switch b {
	case PrereleaseNightly:
		return "prerelease-nightly"
	case ReleaseNightly:
		return "release-nightly"
	case Prerelease:
		return "prerelease"
	default:
		return "release"
	}
}

// Criteria describes what a caller is asking for.
type Criteria struct {
	// Target is the requested version. Nil means "latest".
	Target *version.Version

	// Prerelease selects prerelease versions instead of releases.
	Prerelease bool

	// Nightly selects nightly (build-tagged) versions.
	Nightly bool
}

// Bucket returns the bucket the criteria ask for.
func (c Criteria) Bucket() Bucket {
	return BucketFor(c.Prerelease, c.Nightly)
}
