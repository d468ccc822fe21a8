package pkgresolve

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-pkgresolve/manifest"
	"github.com/albertocavalcante/go-pkgresolve/platform"
)

func art(relpath string) manifest.Artifact {
	return manifest.Artifact{Relpath: relpath, MD5: "md5-" + relpath, SHA256: "sha256-" + relpath}
}

func testManifest() manifest.Manifest {
	return manifest.Manifest{
		"el": {
			"5": {
				"x86_64": {
					"10.16.0":      art("el5-10.16.0"),
					"10.16.0.rc.1": art("el5-10.16.0.rc.1"),
				},
				"i386": {
					"10.14.0": art("el5-i386-10.14.0"),
				},
			},
			"6": {
				"x86_64": {
					"11.0.0":                              art("el6-11.0.0"),
					"11.0.0-alpha.1":                      art("el6-11.0.0-alpha.1"),
					"11.1.0+20130101000000.git.1.abcdef0": art("el6-nightly"),
					"not-a-version":                       art("junk"),
				},
			},
		},
		"windows": {
			"2008r2": {"i386": {"12.0.0": art("win2008r2-i386-12.0.0")}},
			"2012r2": {"x86_64": {"12.1.0": art("win2012r2-12.1.0")}},
		},
		"amazon": {
			"2":    {"x86_64": {"12.0.0": art("amazon2-12.0.0")}},
			"2023": {"x86_64": {"12.2.0": art("amazon2023-12.2.0")}},
		},
		"ubuntu": {
			"14.04": {"x86_64": {"12.0.0": art("ubuntu1404-12.0.0")}},
			"16.04": {"x86_64": {"12.5.0": art("ubuntu1604-12.5.0")}},
		},
	}
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(opts...)
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)
	m := testManifest()

	tests := []struct {
		name        string
		req         Request
		wantVersion string
		wantRelpath string
		wantPV      string
		wantArch    string
		wantYolo    bool
	}{
		{
			name:        "latest sees older platform versions",
			req:         Request{Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "11.0.0", wantRelpath: "el6-11.0.0", wantPV: "6", wantArch: "x86_64",
		},
		{
			name:        "exact version from an older platform version",
			req:         Request{Version: "10.16.0", Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "10.16.0", wantRelpath: "el5-10.16.0", wantPV: "5", wantArch: "x86_64",
		},
		{
			name:        "partial version",
			req:         Request{Version: "10", Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "10.16.0", wantRelpath: "el5-10.16.0", wantPV: "5", wantArch: "x86_64",
		},
		{
			name:        "alias with minor platform version",
			req:         Request{Version: "latest", Platform: "centos", PlatformVersion: "7.4.1708", Arch: "amd64"},
			wantVersion: "11.0.0", wantRelpath: "el6-11.0.0", wantPV: "6", wantArch: "x86_64",
		},
		{
			name:        "prerelease",
			req:         Request{Prerelease: true, Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "11.0.0-alpha.1", wantRelpath: "el6-11.0.0-alpha.1", wantPV: "6", wantArch: "x86_64",
		},
		{
			name:        "prerelease limited by window",
			req:         Request{Prerelease: true, Platform: "el", PlatformVersion: "5", Arch: "x86_64"},
			wantVersion: "10.16.0.rc.1", wantRelpath: "el5-10.16.0.rc.1", wantPV: "5", wantArch: "x86_64",
		},
		{
			name:        "nightly",
			req:         Request{Nightlies: true, Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "11.1.0+20130101000000.git.1.abcdef0", wantRelpath: "el6-nightly", wantPV: "6", wantArch: "x86_64",
		},
		{
			name:        "build target returned verbatim",
			req:         Request{Version: "11.1.0+20130101000000.git.1.abcdef0", Platform: "el", PlatformVersion: "6", Arch: "x86_64"},
			wantVersion: "11.1.0+20130101000000.git.1.abcdef0", wantRelpath: "el6-nightly", wantPV: "6", wantArch: "x86_64",
		},
		{
			name:        "fallback arch",
			req:         Request{Platform: "el", PlatformVersion: "6", Arch: "i686"},
			wantVersion: "10.14.0", wantRelpath: "el5-i386-10.14.0", wantPV: "5", wantArch: "i386",
		},
		{
			name:        "windows kernel version with fallback arch",
			req:         Request{Platform: "windows", PlatformVersion: "6.1.7601", Arch: "x86_64"},
			wantVersion: "12.0.0", wantRelpath: "win2008r2-i386-12.0.0", wantPV: "2008r2", wantArch: "i386",
		},
		{
			name:        "windows newer release",
			req:         Request{Platform: "windows", PlatformVersion: "6.3.9600", Arch: "x86_64"},
			wantVersion: "12.1.0", wantRelpath: "win2012r2-12.1.0", wantPV: "2012r2", wantArch: "x86_64",
		},
		{
			name:        "window floor hides older generation",
			req:         Request{Platform: "amazon", PlatformVersion: "2023", Arch: "x86_64"},
			wantVersion: "12.2.0", wantRelpath: "amazon2023-12.2.0", wantPV: "2023", wantArch: "x86_64",
		},
		{
			name:        "below window floor",
			req:         Request{Platform: "amazon", PlatformVersion: "2", Arch: "x86_64"},
			wantVersion: "12.0.0", wantRelpath: "amazon2-12.0.0", wantPV: "2", wantArch: "x86_64",
		},
		{
			name:        "computed remap is yolo",
			req:         Request{Platform: "linuxmint", PlatformVersion: "18", Arch: "x86_64"},
			wantVersion: "12.0.0", wantRelpath: "ubuntu1404-12.0.0", wantPV: "14.04", wantArch: "x86_64", wantYolo: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Project = "chef"
			tt.req.Channel = "stable"

			got, err := r.Resolve(m, tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantVersion, got.Version)
			assert.Equal(t, tt.wantRelpath, got.Relpath)
			assert.Equal(t, "md5-"+tt.wantRelpath, got.MD5)
			assert.Equal(t, "sha256-"+tt.wantRelpath, got.SHA256)
			assert.Equal(t, tt.wantPV, got.PlatformVersion)
			assert.Equal(t, tt.wantArch, got.Arch)
			assert.Equal(t, tt.wantYolo, got.Yolo)
			assert.Equal(t, "chef", got.Project)
			assert.Equal(t, "stable", got.Channel)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	r := newTestResolver(t)
	m := testManifest()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"unknown platform", Request{Platform: "benthos", PlatformVersion: "1", Arch: "x86_64"}, ErrInvalidPlatform},
		{"missing platform version", Request{Platform: "el", Arch: "x86_64"}, ErrInvalidPlatform},
		{"unknown version", Request{Version: "99.0.0", Platform: "el", PlatformVersion: "6", Arch: "x86_64"}, ErrInvalidDownloadPath},
		{"newer platform version not visible", Request{Version: "11", Platform: "el", PlatformVersion: "5", Arch: "x86_64"}, ErrInvalidDownloadPath},
		{"window floor excludes older generation", Request{Version: "12.0.0", Platform: "amazon", PlatformVersion: "2023", Arch: "x86_64"}, ErrInvalidDownloadPath},
		{"platform without builds", Request{Platform: "debian", PlatformVersion: "9", Arch: "x86_64"}, ErrInvalidDownloadPath},
		{"arch without builds or fallback", Request{Platform: "ubuntu", PlatformVersion: "16.04", Arch: "ppc64le"}, ErrInvalidDownloadPath},
		{"prerelease target missing", Request{Version: "11.0.0-beta.1", Platform: "el", PlatformVersion: "6", Arch: "x86_64"}, ErrInvalidDownloadPath},
		{"unparseable version", Request{Version: "bogus!", Platform: "el", PlatformVersion: "6", Arch: "x86_64"}, ErrUnsupportedVersionFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(m, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve_PlatformVersionWindow(t *testing.T) {
	m := manifest.Manifest{
		"el": {
			"5": {"x86_64": {"1.0.0": art("el5")}},
			"6": {"x86_64": {"2.0.0": art("el6")}},
		},
	}
	r := newTestResolver(t)

	got, err := r.Resolve(m, Request{Version: "1.0.0", Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "el5", got.Relpath)

	got, err = r.Resolve(m, Request{Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", got.Version)

	_, err = r.Resolve(m, Request{Version: "2.0.0", Platform: "el", PlatformVersion: "5", Arch: "x86_64"})
	assert.ErrorIs(t, err, ErrInvalidDownloadPath)
}

func TestResolve_HigherPlatformVersionWins(t *testing.T) {
	m := manifest.Manifest{
		"el": {
			"5": {"x86_64": {"1.0.0": art("el5")}},
			"6": {"x86_64": {"1.0.0": art("el6")}},
			"7": {"x86_64": {"1.0.0": art("el7")}},
		},
	}
	r := newTestResolver(t)

	got, err := r.Resolve(m, Request{Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "el6", got.Relpath)
	assert.Equal(t, "6", got.PlatformVersion)
}

func TestResolve_IgnoresVersionPrefixKeys(t *testing.T) {
	m := manifest.Manifest{
		"el": {"6": {"x86_64": {"12.5.0": art("good"), "13": art("stray"), "12.9": art("stray-minor")}}},
	}
	r := newTestResolver(t)

	got, err := r.Resolve(m, Request{Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "good", got.Relpath)
	assert.Equal(t, "12.5.0", got.Version)

	list, err := r.PackageList(context.Background(), m, Query{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "good", list["el"]["6"]["x86_64"].Relpath)

	versions := r.Versions(m)
	require.Len(t, versions, 1)
	assert.Equal(t, "12.5.0", versions[0].String())
}

func TestResolve_EndToEnd(t *testing.T) {
	m, err := manifest.Parse([]byte(`{"el":{"5":{"x86_64":{
		"10.16.0":{"relpath":"/el/5/x86_64/chef-10.16.0-1.el5.x86_64.rpm","md5":"a","sha256":"b"},
		"10.16.0.rc.1":{"relpath":"/el/5/x86_64/chef-10.16.0.rc.1-1.el5.x86_64.rpm","md5":"c","sha256":"d"}}}}}`))
	require.NoError(t, err)

	got, err := Resolve(m, Request{Platform: "el", PlatformVersion: "5", Arch: "x86_64"})
	require.NoError(t, err)

	assert.Equal(t, "10.16.0", got.Version)
	assert.Equal(t, "/el/5/x86_64/chef-10.16.0-1.el5.x86_64.rpm", got.Relpath)
	assert.Equal(t, "a", got.MD5)
	assert.Equal(t, "b", got.SHA256)
	assert.Equal(t, "el", got.Platform)
}

func TestPackageList(t *testing.T) {
	m := manifest.Manifest{
		"el": {
			"5": {"x86_64": {"12.0.0": art("el5-12.0.0"), "12.1.0": art("el5-12.1.0")}},
			"6": {
				"x86_64": {"12.1.0": art("el6-12.1.0")},
				"i386":   {"12.1.0": art("el6-i386-12.1.0"), "junk": art("junk")},
			},
		},
		"ubuntu": {
			"14.04": {"x86_64": {"12.0.0": art("ubuntu-12.0.0")}},
		},
	}

	for _, concurrency := range []int{0, 1} {
		r := newTestResolver(t, WithConcurrency(concurrency))

		list, err := r.PackageList(context.Background(), m, Query{})
		require.NoError(t, err)

		assert.Equal(t, 3, list.Len())
		assert.NotContains(t, list, "ubuntu")
		require.Contains(t, list, "el")
		assert.Equal(t, "el5-12.1.0", list["el"]["5"]["x86_64"].Relpath)
		assert.Equal(t, "el6-12.1.0", list["el"]["6"]["x86_64"].Relpath)
		assert.Equal(t, "el6-i386-12.1.0", list["el"]["6"]["i386"].Relpath)
		for _, pvs := range list {
			for _, arches := range pvs {
				for _, a := range arches {
					assert.Equal(t, "12.1.0", a.Version)
				}
			}
		}
	}
}

func TestPackageList_VersionPrefix(t *testing.T) {
	m := manifest.Manifest{
		"el":     {"6": {"x86_64": {"11.18.0": art("el-11"), "12.1.0": art("el-12")}}},
		"ubuntu": {"14.04": {"x86_64": {"11.18.0": art("ubuntu-11")}}},
	}

	list, err := List(context.Background(), m, Query{Version: "11"})
	require.NoError(t, err)

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, "el-11", list["el"]["6"]["x86_64"].Relpath)
	assert.Equal(t, "ubuntu-11", list["ubuntu"]["14.04"]["x86_64"].Relpath)
}

func TestPackageList_VerbatimTarget(t *testing.T) {
	m := manifest.Manifest{
		"el": {"6": {"x86_64": {"10.16.0.rc.1": art("el6-rc")}}},
	}
	r := newTestResolver(t)
	q := Query{Version: "10.16.0-rc.1", Prerelease: true}

	got, err := r.Resolve(m, Request{Version: q.Version, Prerelease: true, Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "el6-rc", got.Relpath)

	list, err := r.PackageList(context.Background(), m, q)
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	a := list["el"]["6"]["x86_64"]
	assert.Equal(t, "el6-rc", a.Relpath)
	assert.Equal(t, "10.16.0.rc.1", a.Version)

	list, err = r.PackageList(context.Background(), m, Query{Version: "10.16.0-rc.1"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
}

func TestPackageList_Empty(t *testing.T) {
	r := newTestResolver(t)

	list, err := r.PackageList(context.Background(), manifest.Manifest{}, Query{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())

	list, err = r.PackageList(context.Background(), testManifest(), Query{Version: "99"})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
}

func TestPackageList_Cancelled(t *testing.T) {
	r := newTestResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.PackageList(ctx, testManifest(), Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPackageList_BadQuery(t *testing.T) {
	r := newTestResolver(t)
	_, err := r.PackageList(context.Background(), testManifest(), Query{Version: "x.y"})
	assert.ErrorIs(t, err, ErrUnsupportedVersionFormat)
}

func TestVersionsAndLatest(t *testing.T) {
	r := newTestResolver(t)
	m := testManifest()

	var got []string
	for _, v := range r.Versions(m) {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{
		"10.14.0",
		"10.16.0.rc.1",
		"10.16.0",
		"11.0.0-alpha.1",
		"11.0.0",
		"11.1.0+20130101000000.git.1.abcdef0",
		"12.0.0",
		"12.1.0",
		"12.2.0",
		"12.5.0",
	}, got)

	latest, ok, err := r.Latest(m, Query{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12.5.0", latest.String())

	latest, ok, err = r.Latest(m, Query{Version: "11", Prerelease: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "11.0.0-alpha.1", latest.String())

	_, ok, err = r.Latest(m, Query{Version: "13"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newTestResolver(t, WithLogger(logger))

	_, err := r.Resolve(testManifest(), Request{Platform: "el", PlatformVersion: "6", Arch: "x86_64"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "skipping unparseable manifest version")
	assert.Contains(t, buf.String(), "not-a-version")
	assert.Contains(t, buf.String(), "resolved package")
}

func TestOptions(t *testing.T) {
	_, err := NewResolver(WithConcurrency(-1))
	assert.Error(t, err)

	_, err = NewResolver(WithPlatformTable(nil))
	assert.Error(t, err)

	_, err = NewResolver(WithPlatformFile(filepath.Join(t.TempDir(), "missing.star")))
	assert.Error(t, err)

	r := newTestResolver(t)
	assert.Same(t, platform.Default(), r.Table())
}

func TestWithPlatformFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.star")
	require.NoError(t, os.WriteFile(path, []byte(`
platform(name = "beos", fallback_arch = "x86")
platform(name = "haiku", remap = "beos", yolo = True)
`), 0o644))

	r := newTestResolver(t, WithPlatformFile(path))
	m := manifest.Manifest{"beos": {"5": {"x86": {"1.0.0": art("beos")}}}}

	got, err := r.Resolve(m, Request{Platform: "haiku", PlatformVersion: "r1", Arch: "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, "beos", got.Relpath)
	assert.Equal(t, "x86", got.Arch)
	assert.True(t, got.Yolo)

	_, err = r.Resolve(m, Request{Platform: "el", PlatformVersion: "7", Arch: "x86_64"})
	assert.ErrorIs(t, err, ErrInvalidPlatform)
}
