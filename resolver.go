package pkgresolve

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-pkgresolve/manifest"
	"github.com/albertocavalcante/go-pkgresolve/platform"
	"github.com/albertocavalcante/go-pkgresolve/selection"
	"github.com/albertocavalcante/go-pkgresolve/version"
)

// Resolver picks packages out of build manifests.
//
// Resolution proceeds in four steps:
//  1. The client's platform is mapped through the platform table onto the
//     platform builds are published under.
//  2. Every published platform version at or below the client's is
//     collected, oldest first, so that builds for older releases of a
//     distribution remain visible on newer ones.
//  3. For each of those, the builds for the client's architecture are taken,
//     or those for the platform's fallback architecture when there are none.
//     Later platform versions overwrite earlier ones on version collisions.
//  4. The version keys are parsed and handed to selection.Select.
//
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	table       *platform.Table
	concurrency int
	log         *slog.Logger
}

// NewResolver creates a Resolver. Without WithPlatformTable it uses
// platform.Default().
func NewResolver(opts ...Option) (*Resolver, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		table:       cfg.table,
		concurrency: cfg.concurrency,
		log:         cfg.log(),
	}, nil
}

// Table returns the platform table the resolver maps platforms with.
func (r *Resolver) Table() *platform.Table {
	return r.table
}

// candidate is one version key collected from the manifest window.
type candidate struct {
	raw             string
	artifact        manifest.Artifact
	platformVersion string
	arch            string
}

// Resolve returns the best package in m for req.
//
// It fails with ErrInvalidPlatform when the platform cannot be mapped,
// ErrUnsupportedVersionFormat when req.Version cannot be parsed, and
// ErrInvalidDownloadPath when nothing matches.
func (r *Resolver) Resolve(m manifest.Manifest, req Request) (*Artifact, error) {
	criteria, err := req.Query().criteria()
	if err != nil {
		return nil, err
	}

	pv, err := r.table.Resolve(req.Platform, req.PlatformVersion, req.Arch)
	if err != nil {
		return nil, err
	}

	published := m[pv.MappedName()]
	if len(published) == 0 {
		return nil, fmt.Errorf("%w: no builds for platform %s", ErrInvalidDownloadPath, pv.MappedName())
	}

	candidates := r.collect(pv, published)
	parsed, byRaw := r.parseCandidates(candidates, pv)

	selected, ok := selection.Select(parsed, criteria)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDownloadPath, describe(req, pv))
	}

	key, ok := manifestKey(parsed, selected)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no build for %s", ErrInvalidDownloadPath, describe(req, pv), selected)
	}
	c := byRaw[key]

	r.log.Debug("resolved package",
		"platform", pv.String(),
		"arch", c.arch,
		"platform_version", c.platformVersion,
		"version", c.raw)

	return r.artifact(req.Project, req.Channel, pv, c), nil
}

// window returns the published platform versions visible from pv, oldest
// first.
func (r *Resolver) window(pv platform.Version, published manifest.PlatformVersions) []string {
	floor, hasFloor := pv.Floor()
	aboveFloor := hasFloor && !pv.Less(floor)

	type entry struct {
		key string
		v   platform.Version
	}
	var entries []entry
	for key := range published {
		v := r.table.Published(pv.MappedName(), key)
		c, err := platform.Compare(v, pv)
		if err != nil || c > 0 {
			continue
		}
		if aboveFloor && v.Less(floor) {
			continue
		}
		entries = append(entries, entry{key: key, v: v})
	}

	sort.Slice(entries, func(i, j int) bool {
		c, _ := platform.Compare(entries[i].v, entries[j].v)
		if c != 0 {
			return c < 0
		}
		return entries[i].key < entries[j].key
	})

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// collect merges the builds visible from pv, later platform versions
// overwriting earlier ones.
func (r *Resolver) collect(pv platform.Version, published manifest.PlatformVersions) map[string]candidate {
	out := make(map[string]candidate)
	for _, key := range r.window(pv, published) {
		arches := published[key]
		arch := pv.Arch()
		builds := arches[arch]
		if len(builds) == 0 && pv.FallbackArch() != "" {
			arch = pv.FallbackArch()
			builds = arches[arch]
		}
		if len(builds) == 0 {
			continue
		}
		for raw, a := range builds {
			out[raw] = candidate{raw: raw, artifact: a, platformVersion: key, arch: arch}
		}
	}
	return out
}

// manifestKey returns the manifest key of the parsed version selected
// stands for. A verbatim build or prerelease target need not be spelled the
// way the manifest spells it, so keys equal under Compare also match.
func manifestKey(parsed []version.Version, selected version.Version) (string, bool) {
	raw := selected.String()
	if slices.ContainsFunc(parsed, func(v version.Version) bool { return v.String() == raw }) {
		return raw, true
	}
	i := slices.IndexFunc(parsed, func(v version.Version) bool { return v.Compare(selected) == 0 })
	if i < 0 {
		return "", false
	}
	return parsed[i].String(), true
}

// parseCandidates parses candidate keys in sorted order, dropping the ones
// no format accepts.
func (r *Resolver) parseCandidates(candidates map[string]candidate, pv platform.Version) ([]version.Version, map[string]candidate) {
	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parsed := make([]version.Version, 0, len(keys))
	for _, k := range keys {
		v, err := version.ParseManifestKey(k)
		if err != nil {
			r.log.Debug("skipping unparseable manifest version",
				"platform", pv.MappedName(),
				"version", k,
				"error", err)
			continue
		}
		parsed = append(parsed, v)
	}
	return parsed, candidates
}

func (r *Resolver) artifact(project, channel string, pv platform.Version, c candidate) *Artifact {
	a := &Artifact{
		Artifact:        c.artifact,
		Project:         project,
		Channel:         channel,
		Platform:        pv.MappedName(),
		PlatformVersion: c.platformVersion,
		Arch:            c.arch,
		Yolo:            pv.Yolo(),
	}
	a.Version = c.raw
	return a
}

func describe(req Request, pv platform.Version) string {
	want := req.Version
	if want == "" {
		want = "latest"
	}
	return fmt.Sprintf("%s %s on %s %s", req.Project, want, pv.String(), pv.Arch())
}

// PackageList selects, for every platform, platform version and
// architecture in m, the best version for q, then keeps only the entries
// whose version equals the newest selected anywhere. The result is what a
// download page lists for one release.
//
// No platform mapping or windowing is applied; keys are taken as published.
// Platforms are processed concurrently and ctx cancellation stops the walk.
func (r *Resolver) PackageList(ctx context.Context, m manifest.Manifest, q Query) (PackageList, error) {
	criteria, err := q.criteria()
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		selected []*Artifact
		versions []version.Version
	)

	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for _, name := range m.Platforms() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			arts, vs := r.selectPlatform(name, m[name], criteria)
			mu.Lock()
			selected = append(selected, arts...)
			versions = append(versions, vs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(PackageList)
	top, ok := version.Max(versions)
	if !ok {
		return out, nil
	}
	for i, a := range selected {
		if versions[i].Compare(top) == 0 {
			out.add(a)
		}
	}
	return out, nil
}

// selectPlatform returns the selected artifact for each platform version and
// architecture of one platform, with the parsed version of each.
func (r *Resolver) selectPlatform(name string, pvs manifest.PlatformVersions, criteria selection.Criteria) ([]*Artifact, []version.Version) {
	var (
		arts []*Artifact
		vs   []version.Version
	)

	spec, _ := r.table.Lookup(name)

	for pvKey, arches := range pvs {
		for arch, builds := range arches {
			parsed := make([]version.Version, 0, len(builds))
			for raw := range builds {
				v, err := version.ParseManifestKey(raw)
				if err != nil {
					r.log.Debug("skipping unparseable manifest version",
						"platform", name,
						"version", raw,
						"error", err)
					continue
				}
				parsed = append(parsed, v)
			}

			v, ok := selection.Select(parsed, criteria)
			if !ok {
				continue
			}
			key, ok := manifestKey(parsed, v)
			if !ok {
				continue
			}
			a := builds[key]
			art := &Artifact{
				Artifact:        a,
				Platform:        name,
				PlatformVersion: pvKey,
				Arch:            arch,
				Yolo:            spec.Yolo,
			}
			art.Version = key
			arts = append(arts, art)
			vs = append(vs, v)
		}
	}
	return arts, vs
}

// Versions returns every parseable version in m, deduplicated by their
// string form and sorted oldest first.
func (r *Resolver) Versions(m manifest.Manifest) []version.Version {
	var out []version.Version
	for _, raw := range m.VersionStrings() {
		v, err := version.ParseManifestKey(raw)
		if err != nil {
			r.log.Debug("skipping unparseable manifest version", "version", raw, "error", err)
			continue
		}
		out = append(out, v)
	}
	version.Sort(out)
	return out
}

// Latest returns the version q selects across every build in m, ignoring
// platforms. It returns false when nothing qualifies.
func (r *Resolver) Latest(m manifest.Manifest, q Query) (version.Version, bool, error) {
	criteria, err := q.criteria()
	if err != nil {
		return version.Version{}, false, err
	}
	v, ok := selection.Select(r.Versions(m), criteria)
	return v, ok, nil
}
