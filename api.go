// Package pkgresolve answers "which installer package should I download"
// against build manifests keyed by platform, platform version, architecture
// and version.
//
// # Overview
//
// The module is split into small packages:
//
//   - version: parses the version syntaxes found in manifests and orders them
//   - selection: picks the best version for a request
//   - platform: maps client platforms onto the platforms builds exist for
//   - manifest: manifest types and decoding
//
// This package ties them together in Resolver.
//
// # Quick Start
//
//	m, err := manifest.ReadFile("stable/chef.json")
//	if err != nil {
//	    return err
//	}
//
//	a, err := pkgresolve.Resolve(m, pkgresolve.Request{
//	    Project:         "chef",
//	    Channel:         "stable",
//	    Version:         "12",
//	    Platform:        "centos",
//	    PlatformVersion: "7.4",
//	    Arch:            "x86_64",
//	})
//	switch {
//	case errors.Is(err, pkgresolve.ErrInvalidPlatform):
//	    // unknown platform
//	case errors.Is(err, pkgresolve.ErrInvalidDownloadPath):
//	    // no matching package
//	}
//
// # Version Selection
//
// An empty version or "latest" selects the newest release. A prefix such as
// "12" or "12.1" selects the newest release on that line. Prerelease and
// Nightlies switch to the corresponding class of versions; see the selection
// package for the exact rules.
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use. Manifests
// passed in must not be modified while a call is running.
package pkgresolve

import (
	"context"

	"github.com/albertocavalcante/go-pkgresolve/manifest"
)

// Resolve resolves req against m with a Resolver built from opts.
//
// Callers resolving many requests should create one Resolver and reuse it.
func Resolve(m manifest.Manifest, req Request, opts ...Option) (*Artifact, error) {
	r, err := NewResolver(opts...)
	if err != nil {
		return nil, err
	}
	return r.Resolve(m, req)
}

// List returns the package list of m for q with a Resolver built from opts.
func List(ctx context.Context, m manifest.Manifest, q Query, opts ...Option) (PackageList, error) {
	r, err := NewResolver(opts...)
	if err != nil {
		return nil, err
	}
	return r.PackageList(ctx, m, q)
}
