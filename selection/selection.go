package selection

import "github.com/albertocavalcante/go-pkgresolve/version"

// Select returns the best version in all for the given criteria.
// It returns false when no version qualifies.
//
// The rules are evaluated top to bottom and the first that applies wins:
//  1. A target with a build tag is returned as is.
//  2. A target with a prerelease tag is returned as is, unless nightlies are
//     requested; then the newest version on that prerelease line is returned.
//  3. Otherwise the newest version that is on the target's release line (any
//     line when there is no target) and in the requested bucket is returned.
func Select(all []version.Version, c Criteria) (version.Version, bool) {
	target := c.Target

	if target != nil && target.HasBuild() {
		return *target, true
	}

	if target != nil && target.HasPrerelease() {
		if !c.Nightly {
			return *target, true
		}
		return maxWhere(all, func(v version.Version) bool {
			return v.SameRelease(*target) && v.Prerelease() == target.Prerelease()
		})
	}

	bucket := c.Bucket()
	return maxWhere(all, func(v version.Version) bool {
		return InReleaseLine(v, target) && bucket.Matches(v)
	})
}

// InReleaseLine reports whether v is on the release line of target.
// A nil target matches everything; a partial target matches on the
// components it spells out.
func InReleaseLine(v version.Version, target *version.Version) bool {
	if target == nil {
		return true
	}
	switch target.Precision() {
	case 1:
		return v.Major() == target.Major()
	case 2:
		return v.Major() == target.Major() && v.Minor() == target.Minor()
	default:
		return v.SameRelease(*target)
	}
}

// Filter returns the versions in all that belong to bucket b and are on the
// release line of target, preserving order.
func Filter(all []version.Version, target *version.Version, b Bucket) []version.Version {
	var out []version.Version
	for _, v := range all {
		if InReleaseLine(v, target) && b.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

func maxWhere(all []version.Version, keep func(version.Version) bool) (version.Version, bool) {
	var best version.Version
	found := false
	for _, v := range all {
		if !keep(v) {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}
