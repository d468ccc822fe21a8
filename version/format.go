package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format identifies one of the supported version grammars.
type Format int

const (
	// Rubygems is MAJOR.MINOR.PATCH[.(alpha|beta|rc).N][-ITERATION].
	Rubygems Format = iota + 1
	// GitDescribe is MAJOR.MINOR.PATCH[(.|-)PRERELEASE]-COMMITS-gSHA[-ITERATION].
	GitDescribe
	// ProjectSemVer is SemVer restricted to the tags produced by the
	// release pipeline: alpha/beta/rc prereleases and timestamped git builds.
	ProjectSemVer
	// SemVer is MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
	SemVer
	// PartialSemVer is MAJOR[.MINOR], used as a version prefix.
	PartialSemVer
)

var formatNames = map[Format]string{
	Rubygems:      "rubygems",
	GitDescribe:   "git_describe",
	ProjectSemVer: "project_semver",
	SemVer:        "semver",
	PartialSemVer: "partial_semver",
}

// String returns the format's name.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormatName maps a format name back to a Format.
func ParseFormatName(name string) (Format, bool) {
	for f, n := range formatNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// DefaultFormats is the order Parse tries formats in.
//
// The order decides which era's rules apply to strings more than one grammar
// accepts, so it must not change: "10.16.2-49-g21353f0-1" is a GitDescribe
// version, not a SemVer prerelease.
var DefaultFormats = []Format{Rubygems, GitDescribe, ProjectSemVer, SemVer, PartialSemVer}

// ManifestFormats is the order ParseManifestKey tries formats in. It is
// DefaultFormats without PartialSemVer: a version prefix names a release
// line, never a published build.
var ManifestFormats = []Format{Rubygems, GitDescribe, ProjectSemVer, SemVer}

var (
	rubygemsPattern = regexp.MustCompile(
		`^(\d+)\.(\d+)\.(\d+)(?:\.((?:alpha|beta|rc)\.\d+))?(?:-(\d+))?$`,
	)
	gitDescribePattern = regexp.MustCompile(
		`^(\d+)\.(\d+)\.(\d+)(?:[.-]([0-9A-Za-z.-]+?))?-(\d+)-g([a-f0-9]{7})(?:-(\d+))?$`,
	)
	projectSemVerPattern = regexp.MustCompile(
		`^(\d+)\.(\d+)\.(\d+)(?:-((?:alpha|beta|rc)(?:\.\d+)?))?(?:\+(\d{14}\.git\.\d+\.[a-f0-9]{7}))?$`,
	)
	semVerPattern = regexp.MustCompile(
		`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`,
	)
	partialSemVerPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)
)

// parseFunc parses raw in one format. It returns false when raw does not
// match the format's grammar.
type parseFunc func(raw string) (Version, bool)

var parsers = map[Format]parseFunc{
	Rubygems:      parseRubygems,
	GitDescribe:   parseGitDescribe,
	ProjectSemVer: parseProjectSemVer,
	SemVer:        parseSemVer,
	PartialSemVer: parsePartialSemVer,
}

// Parse parses raw using the first format in DefaultFormats that accepts it.
// A string no format accepts yields a *ParseError wrapping
// ErrUnsupportedFormat.
func Parse(raw string) (Version, error) {
	return ParseWith(raw, DefaultFormats...)
}

// ParseManifestKey parses a version key read from a build manifest.
// Keys such as "13" or "12.1" are rejected with ErrUnsupportedFormat.
func ParseManifestKey(raw string) (Version, error) {
	return ParseWith(raw, ManifestFormats...)
}

// ParseWith parses raw trying only the given formats, in order.
func ParseWith(raw string, formats ...Format) (Version, error) {
	for _, f := range formats {
		parse, ok := parsers[f]
		if !ok {
			continue
		}
		if v, ok := parse(raw); ok {
			return v, nil
		}
	}
	return Version{}, &ParseError{Input: raw, Formats: formats}
}

// ParseFormat parses raw in exactly one format.
func ParseFormat(f Format, raw string) (Version, error) {
	return ParseWith(raw, f)
}

// MustParse parses raw or panics. Use only for constants and tests.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func parseRubygems(raw string) (Version, bool) {
	m := rubygemsPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, false
	}
	v, ok := newRelease(raw, Rubygems, m[1], m[2], m[3])
	if !ok {
		return Version{}, false
	}
	v.prerelease = m[4]
	if m[5] != "" {
		if v.iteration, ok = atoi(m[5]); !ok {
			return Version{}, false
		}
		v.hasIteration = true
	}
	return v, true
}

func parseGitDescribe(raw string) (Version, bool) {
	m := gitDescribePattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, false
	}
	v, ok := newRelease(raw, GitDescribe, m[1], m[2], m[3])
	if !ok {
		return Version{}, false
	}
	v.prerelease = m[4]

	commits, sha := m[5], m[6]
	if m[7] != "" {
		if v.iteration, ok = atoi(m[7]); !ok {
			return Version{}, false
		}
	}
	v.hasIteration = true
	v.build = fmt.Sprintf("%s.g%s.%d", commits, sha, v.iteration)
	return v, true
}

func parseProjectSemVer(raw string) (Version, bool) {
	m := projectSemVerPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, false
	}
	v, ok := newRelease(raw, ProjectSemVer, m[1], m[2], m[3])
	if !ok {
		return Version{}, false
	}
	v.prerelease = m[4]
	v.build = m[5]
	return v, true
}

func parseSemVer(raw string) (Version, bool) {
	m := semVerPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, false
	}
	v, ok := newRelease(raw, SemVer, m[1], m[2], m[3])
	if !ok {
		return Version{}, false
	}
	if !validTag(m[4]) || !validTag(m[5]) {
		return Version{}, false
	}
	v.prerelease = m[4]
	v.build = m[5]
	return v, true
}

func parsePartialSemVer(raw string) (Version, bool) {
	m := partialSemVerPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, false
	}
	minor := m[2]
	precision := 2
	if minor == "" {
		minor = "0"
		precision = 1
	}
	v, ok := newRelease(raw, PartialSemVer, m[1], minor, "0")
	if !ok {
		return Version{}, false
	}
	v.precision = precision
	return v, true
}

func newRelease(raw string, f Format, major, minor, patch string) (Version, bool) {
	v := Version{raw: raw, format: f, precision: 3}
	var err error
	if v.major, err = strconv.ParseUint(major, 10, 64); err != nil {
		return Version{}, false
	}
	if v.minor, err = strconv.ParseUint(minor, 10, 64); err != nil {
		return Version{}, false
	}
	if v.patch, err = strconv.ParseUint(patch, 10, 64); err != nil {
		return Version{}, false
	}
	return v, true
}

// validTag rejects tags with empty dot components such as "rc..1" or "1.".
func validTag(tag string) bool {
	if tag == "" {
		return true
	}
	for _, part := range strings.Split(tag, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
