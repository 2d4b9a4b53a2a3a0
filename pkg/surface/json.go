package surface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSONRenderer marshals RunSummary to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, summary *RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// ArtifactWriter writes each JSON artifact minified into DistDir and, when
// DebugDir is set, indented into DebugDir. Both files end with a newline.
type ArtifactWriter struct {
	DistDir  string
	DebugDir string
}

// Write encodes v as name and returns the paths written.
func (a ArtifactWriter) Write(name string, v any) ([]string, error) {
	minified, err := encode(v, "")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	distPath := filepath.Join(a.DistDir, name)
	if err := writeFile(distPath, minified); err != nil {
		return nil, err
	}
	paths := []string{distPath}

	if a.DebugDir == "" {
		return paths, nil
	}
	indented, err := encode(v, "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	debugPath := filepath.Join(a.DebugDir, name)
	if err := writeFile(debugPath, indented); err != nil {
		return nil, err
	}
	return append(paths, debugPath), nil
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	// Encode terminates the document with a newline.
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
