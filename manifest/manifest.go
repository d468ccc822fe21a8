// Package manifest defines build manifests: the catalog of published
// artifacts for one project and channel.
//
// A Manifest is a nested mapping
//
//	platform -> platform version -> architecture -> version -> Artifact
//
// as produced by the release pipeline. Manifests are treated as read-only
// snapshots; nothing in this module mutates one after decoding.
package manifest

import "sort"

// Artifact describes one downloadable package.
type Artifact struct {
	// URL is the absolute location, when the manifest carries one.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Relpath is the location relative to the download host.
	Relpath string `json:"relpath,omitempty" yaml:"relpath,omitempty"`

	MD5    string `json:"md5,omitempty" yaml:"md5,omitempty"`
	SHA1   string `json:"sha1,omitempty" yaml:"sha1,omitempty"`
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	// Version is the resolved version string. Resolution fills it in.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Location returns URL if set, else Relpath.
func (a Artifact) Location() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Relpath
}

// Builds maps version strings to artifacts.
type Builds map[string]Artifact

// Arches maps architectures to their builds.
type Arches map[string]Builds

// PlatformVersions maps platform versions to architectures.
type PlatformVersions map[string]Arches

// Manifest maps platform names to platform versions.
type Manifest map[string]PlatformVersions

// Platforms returns the platform names in m, sorted.
func (m Manifest) Platforms() []string {
	return sortedKeys(m)
}

// PlatformVersions returns the platform version keys of platform, sorted
// lexically.
func (m Manifest) PlatformVersions(platform string) []string {
	return sortedKeys(m[platform])
}

// Arches returns the architectures published for platform and
// platformVersion, sorted.
func (m Manifest) Arches(platform, platformVersion string) []string {
	return sortedKeys(m[platform][platformVersion])
}

// Builds returns the builds for one platform, platform version and
// architecture. The result is nil when any level is missing.
func (m Manifest) Builds(platform, platformVersion, arch string) Builds {
	return m[platform][platformVersion][arch]
}

// Len returns the number of artifacts in m.
func (m Manifest) Len() int {
	n := 0
	for _, pvs := range m {
		for _, arches := range pvs {
			for _, builds := range arches {
				n += len(builds)
			}
		}
	}
	return n
}

// VersionStrings returns every distinct version key in m, sorted lexically.
func (m Manifest) VersionStrings() []string {
	seen := make(map[string]struct{})
	for _, pvs := range m {
		for _, arches := range pvs {
			for _, builds := range arches {
				for v := range builds {
					seen[v] = struct{}{}
				}
			}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
