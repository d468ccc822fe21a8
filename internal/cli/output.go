package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v in the configured format. text writes the plain form.
func (a *app) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch a.opts.Output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return text(w)
	}
}
