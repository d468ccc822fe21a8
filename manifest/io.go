package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestPermissions = 0o644

// ReadFile reads a manifest from path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ReadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if isYAML(path) {
		return ParseYAML(data)
	}
	return Parse(data)
}

// Parse decodes manifest JSON. Empty input yields an empty manifest.
func Parse(data []byte) (Manifest, error) {
	m := Manifest{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// ParseYAML decodes a manifest written as YAML.
func ParseYAML(data []byte) (Manifest, error) {
	m := Manifest{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Marshal encodes m as indented JSON. Map keys are emitted sorted, so the
// output is deterministic.
func (m Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes m to path, as YAML when the extension asks for it and as
// JSON otherwise.
func (m Manifest) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(m)
	} else {
		data, err = m.Marshal()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, manifestPermissions)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Dir is a directory of manifests laid out as <Root>/<channel>/<project>.json
// (or .yaml / .yml).
type Dir struct {
	Root string
}

var manifestExts = []string{".json", ".yaml", ".yml"}

// Path returns the first existing manifest file for project and channel, or
// the .json path when none exists.
func (d Dir) Path(project, channel string) string {
	base := filepath.Join(d.Root, channel, project)
	for _, ext := range manifestExts {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return base + manifestExts[0]
}

// Load reads the manifest for project and channel. A project or channel
// without a manifest file has no builds, which is not an error.
func (d Dir) Load(project, channel string) (Manifest, error) {
	if err := validName("project", project); err != nil {
		return nil, err
	}
	if err := validName("channel", channel); err != nil {
		return nil, err
	}

	m, err := ReadFile(d.Path(project, channel))
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", channel, project, err)
	}
	return m, nil
}

// Channels lists the channel directories under Root.
func (d Dir) Channels() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Projects lists the projects with a manifest in channel, sorted.
func (d Dir) Projects(channel string) ([]string, error) {
	if err := validName("channel", channel); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(d.Root, channel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		for _, known := range manifestExts {
			if ext == known {
				seen[strings.TrimSuffix(name, ext)] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func validName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
