package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an immutable set of platform Specs and architecture aliases.
type Table struct {
	specs       map[string]Spec
	archAliases map[string]string
}

// NewTable builds a Table. Duplicate names, empty names, and aliases to
// unknown platforms are rejected.
func NewTable(specs []Spec, archAliases map[string]string) (*Table, error) {
	t := &Table{
		specs:       make(map[string]Spec, len(specs)),
		archAliases: make(map[string]string, len(archAliases)),
	}

	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("platform spec with empty name")
		}
		if _, dup := t.specs[s.Name]; dup {
			return nil, fmt.Errorf("duplicate platform %q", s.Name)
		}
		t.specs[s.Name] = s
	}

	for _, s := range specs {
		if s.Remap == "" {
			continue
		}
		target, ok := t.specs[s.Remap]
		if !ok {
			return nil, fmt.Errorf("platform %q remaps to unknown platform %q", s.Name, s.Remap)
		}
		if target.Remap != "" {
			return nil, fmt.Errorf("platform %q remaps to %q, which is itself remapped", s.Name, s.Remap)
		}
	}

	for alias, arch := range archAliases {
		t.archAliases[alias] = arch
	}

	return t, nil
}

// Lookup returns the Spec for name.
func (t *Table) Lookup(name string) (Spec, bool) {
	s, ok := t.specs[name]
	return s, ok
}

// Specs returns all Specs sorted by name.
func (t *Table) Specs() []Spec {
	out := make([]Spec, 0, len(t.specs))
	for _, s := range t.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ArchAliases returns a copy of the architecture alias map.
func (t *Table) ArchAliases() map[string]string {
	out := make(map[string]string, len(t.archAliases))
	for k, v := range t.archAliases {
		out[k] = v
	}
	return out
}

// NormalizeArch maps an architecture alias (e.g. "amd64") to the name
// builds are published under (e.g. "x86_64").
func (t *Table) NormalizeArch(arch string) string {
	if a, ok := t.archAliases[arch]; ok {
		return a
	}
	return arch
}

// Resolve maps a client's platform, platform version and architecture onto
// the platform builds are published under.
//
// It fails with ErrInvalidPlatform when the platform is unknown, the version
// or architecture is empty, or the version cannot be remapped.
func (t *Table) Resolve(name, rawVersion, arch string) (Version, error) {
	spec, ok := t.specs[name]
	if !ok {
		return Version{}, fmt.Errorf("%w: unknown platform %q", ErrInvalidPlatform, name)
	}
	if strings.TrimSpace(rawVersion) == "" {
		return Version{}, fmt.Errorf("%w: missing platform version for %q", ErrInvalidPlatform, name)
	}
	if strings.TrimSpace(arch) == "" {
		return Version{}, fmt.Errorf("%w: missing machine architecture for %q", ErrInvalidPlatform, name)
	}

	mapped, err := spec.VersionRemap.Apply(rawVersion)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %s %s: %v", ErrInvalidPlatform, name, rawVersion, err)
	}

	v := Version{
		spec:          spec,
		raw:           rawVersion,
		arch:          t.NormalizeArch(arch),
		mappedVersion: mapped,
		majorOnly:     spec.MajorOnly,
		fallbackArch:  spec.FallbackArch,
		windowFloor:   spec.WindowFloor,
	}

	if canonical, ok := t.specs[spec.MappedName()]; ok && canonical.Name != spec.Name {
		v.majorOnly = v.majorOnly || canonical.MajorOnly
		if v.fallbackArch == "" {
			v.fallbackArch = canonical.FallbackArch
		}
		if v.windowFloor == "" {
			v.windowFloor = canonical.WindowFloor
		}
	}

	return v, nil
}

// Published returns the Version for a platform version key as it appears in
// a build manifest, i.e. already under the mapped platform name. No version
// remapping is applied. Platforms missing from the table are accepted with
// default settings, since manifests may list platforms clients never ask for.
func (t *Table) Published(platform, rawVersion string) Version {
	spec, ok := t.specs[platform]
	if !ok {
		spec = Spec{Name: platform}
	}
	spec.Remap = ""
	spec.VersionRemap = VersionRemap{}

	return Version{
		spec:          spec,
		raw:           rawVersion,
		mappedVersion: rawVersion,
		majorOnly:     spec.MajorOnly,
		fallbackArch:  spec.FallbackArch,
		windowFloor:   spec.WindowFloor,
	}
}

// Floor returns the WindowFloor of v as a Version of the same platform, and
// false when v has none.
func (v Version) Floor() (Version, bool) {
	if v.windowFloor == "" {
		return Version{}, false
	}
	return Version{
		spec:          Spec{Name: v.MappedName()},
		raw:           v.windowFloor,
		mappedVersion: v.windowFloor,
		majorOnly:     v.majorOnly,
	}, true
}
