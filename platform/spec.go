// Package platform models the operating system platforms packages are built
// for and how a client's platform maps onto the platforms builds exist for.
//
// A Table holds one Spec per known platform name. A Spec can:
//   - alias another platform (centos -> el),
//   - replace the client's platform version with a fixed one (suse -> el 6)
//     or with one computed from it (linuxmint 17 -> ubuntu 14.04),
//   - compare versions on the major component only (el 7.4 is el 7),
//   - name an architecture to use when a build for the requested one is
//     missing (windows x86_64 -> i386).
//
// Tables are immutable after construction and safe for concurrent use.
package platform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Spec describes one platform name.
type Spec struct {
	// Name is the platform name clients send, e.g. "centos".
	Name string

	// MajorOnly compares platform versions on their first component only.
	MajorOnly bool

	// Remap is the platform builds are published under, if not Name.
	Remap string

	// VersionRemap rewrites the client's platform version.
	VersionRemap VersionRemap

	// Yolo marks platforms served with builds for a related platform that
	// are not tested on the client's platform.
	Yolo bool

	// FallbackArch is used when the requested architecture has no builds.
	FallbackArch string

	// WindowFloor, when set, stops requests at or above it from seeing
	// builds for platform versions below it. Amazon Linux uses it so that
	// 2023 does not fall back to the unrelated Amazon Linux 2 builds.
	WindowFloor string
}

// MappedName returns the platform name builds are published under.
func (s Spec) MappedName() string {
	if s.Remap != "" {
		return s.Remap
	}
	return s.Name
}

// RemapFunc computes a platform version from a client's platform version.
type RemapFunc func(raw string) (string, error)

type remapKind int

const (
	remapNone remapKind = iota
	remapStatic
	remapComputed
)

// VersionRemap is either empty, a fixed version, or a named RemapFunc.
type VersionRemap struct {
	kind  remapKind
	value string
	fn    RemapFunc
}

// StaticRemap returns a VersionRemap that always yields v.
func StaticRemap(v string) VersionRemap {
	return VersionRemap{kind: remapStatic, value: v}
}

// ComputedRemap returns a VersionRemap backed by the registered function
// called name. It fails if no such function exists.
func ComputedRemap(name string) (VersionRemap, error) {
	fn, ok := remapFuncs[name]
	if !ok {
		return VersionRemap{}, fmt.Errorf("unknown version remap function %q (known: %s)",
			name, strings.Join(RemapFuncNames(), ", "))
	}
	return VersionRemap{kind: remapComputed, value: name, fn: fn}, nil
}

// IsZero reports whether r leaves versions untouched.
func (r VersionRemap) IsZero() bool {
	return r.kind == remapNone
}

// Apply returns the remapped version of raw.
func (r VersionRemap) Apply(raw string) (string, error) {
	switch r.kind {
	case remapStatic:
		return r.value, nil
	case remapComputed:
		return r.fn(raw)
	default:
		return raw, nil
	}
}

// String describes the remap for display.
func (r VersionRemap) String() string {
	switch r.kind {
	case remapStatic:
		return r.value
	case remapComputed:
		return r.value + "()"
	default:
		return ""
	}
}

var remapFuncs = map[string]RemapFunc{
	"linuxmint":  linuxMintToUbuntu,
	"windows_nt": windowsNTToRelease,
}

// RemapFuncNames lists the registered computed remap functions.
func RemapFuncNames() []string {
	names := make([]string, 0, len(remapFuncs))
	for name := range remapFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// linuxMintToUbuntu maps a Linux Mint release to the Ubuntu release it is
// based on: even Mint releases follow a .10, odd ones an .04 Ubuntu.
func linuxMintToUbuntu(raw string) (string, error) {
	major, _, _ := strings.Cut(raw, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n < 0 {
		return "", fmt.Errorf("linuxmint version %q is not numeric", raw)
	}
	minor := "04"
	if n%2 == 0 {
		minor = "10"
	}
	return strconv.Itoa((n+11)/2) + "." + minor, nil
}

// windowsNTReleases maps NT kernel versions to server release names.
var windowsNTReleases = map[string]string{
	"6.0":  "2008",
	"6.1":  "2008r2",
	"6.2":  "2012",
	"6.3":  "2012r2",
	"10.0": "2016",
}

// windowsNTToRelease maps an NT kernel version such as "6.3.9600" to the
// release name builds are published under. Release names pass through.
func windowsNTToRelease(raw string) (string, error) {
	parts := strings.SplitN(raw, ".", 3)
	if len(parts) < 2 {
		return raw, nil
	}
	if name, ok := windowsNTReleases[parts[0]+"."+parts[1]]; ok {
		return name, nil
	}
	return raw, nil
}
