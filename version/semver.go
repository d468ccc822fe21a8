package version

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Semver converts v to a Masterminds semver.Version so it can be checked
// against range constraints such as ">= 12, < 13".
//
// Masterminds ignores build metadata when comparing, so two nightlies of the
// same release are equal there even though Compare orders them.
func (v Version) Semver() (*semver.Version, error) {
	sv, err := semver.StrictNewVersion(v.SemverString())
	if err != nil {
		return nil, fmt.Errorf("convert %s to semver: %w", v.raw, err)
	}
	return sv, nil
}

// Satisfies reports whether v satisfies a Masterminds constraint.
func (v Version) Satisfies(c *semver.Constraints) bool {
	sv, err := v.Semver()
	if err != nil {
		return false
	}
	return c.Check(sv)
}
