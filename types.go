package pkgresolve

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-pkgresolve/manifest"
	"github.com/albertocavalcante/go-pkgresolve/selection"
	"github.com/albertocavalcante/go-pkgresolve/version"
)

// Query is the version part of a request.
type Query struct {
	// Version is an exact version, a version prefix ("12", "12.1"),
	// "latest", or empty for latest.
	Version string

	// Prerelease selects prerelease versions.
	Prerelease bool

	// Nightlies selects nightly builds.
	Nightlies bool
}

// criteria parses the requested version and builds selection criteria.
func (q Query) criteria() (selection.Criteria, error) {
	c := selection.Criteria{Prerelease: q.Prerelease, Nightly: q.Nightlies}

	raw := strings.TrimSpace(q.Version)
	if raw == "" || strings.EqualFold(raw, "latest") {
		return c, nil
	}

	target, err := version.Parse(raw)
	if err != nil {
		return c, fmt.Errorf("requested version: %w", err)
	}
	c.Target = &target
	return c, nil
}

// Request asks for the best package for one client.
type Request struct {
	// Project and Channel identify the manifest. The resolver copies them
	// onto the result; the caller supplies the matching manifest.
	Project string
	Channel string

	Version    string
	Prerelease bool
	Nightlies  bool

	// Platform, PlatformVersion and Arch are what the client reports, e.g.
	// "centos", "7.4.1708", "x86_64".
	Platform        string
	PlatformVersion string
	Arch            string
}

// Query returns the version part of the request.
func (r Request) Query() Query {
	return Query{Version: r.Version, Prerelease: r.Prerelease, Nightlies: r.Nightlies}
}

// Artifact is a resolved package.
type Artifact struct {
	manifest.Artifact `yaml:",inline"`

	Project string `json:"project,omitempty" yaml:"project,omitempty"`
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`

	// Platform, PlatformVersion and Arch locate the build in the manifest.
	// They can differ from the request after remapping, windowing and
	// architecture fallback.
	Platform        string `json:"platform" yaml:"platform"`
	PlatformVersion string `json:"platform_version" yaml:"platform_version"`
	Arch            string `json:"arch" yaml:"arch"`

	// Yolo is set when the build was made for a related platform and is
	// untested on the client's platform.
	Yolo bool `json:"yolo,omitempty" yaml:"yolo,omitempty"`
}

// PackageList is the result of a bulk listing:
// platform -> platform version -> arch -> artifact.
type PackageList map[string]map[string]map[string]*Artifact

// Len returns the number of artifacts in l.
func (l PackageList) Len() int {
	n := 0
	for _, pvs := range l {
		for _, arches := range pvs {
			n += len(arches)
		}
	}
	return n
}

func (l PackageList) add(a *Artifact) {
	pvs, ok := l[a.Platform]
	if !ok {
		pvs = make(map[string]map[string]*Artifact)
		l[a.Platform] = pvs
	}
	arches, ok := pvs[a.PlatformVersion]
	if !ok {
		arches = make(map[string]*Artifact)
		pvs[a.PlatformVersion] = arches
	}
	arches[a.Arch] = a
}
