// Package manifest loads the desired schema and index set from YAML or JSON files.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

// Manifest is the desired state of one graph.
type Manifest struct {
	Schema  *gds.SchemaDefinition `json:"schema,omitempty" yaml:"schema,omitempty"`
	Indexes []gds.IndexDefinition `json:"indexes" yaml:"indexes"`
	// Prune lists index names that should not exist.
	Prune []string `json:"prune,omitempty" yaml:"prune,omitempty"`
}

// Load reads, decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("manifest file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest file: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes data by extension (".yaml", ".yml" or ".json"); an empty
// extension tries each format in turn.
func Parse(data []byte, ext string) (*Manifest, error) {
	m, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	sanitize(m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

type unmarshalFn func([]byte, any) error

func decode(data []byte, ext string) (*Manifest, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var m Manifest
		if err := d.fn(data, &m); err != nil {
			errs = append(errs, fmt.Errorf("decode %s manifest: %w", d.name, err))
			continue
		}
		return &m, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("manifest format %q not recognized (expected YAML or JSON)", ext)
	}
	return nil, errors.Join(errs...)
}

func sanitize(m *Manifest) {
	for i := range m.Indexes {
		m.Indexes[i].Name = strings.TrimSpace(m.Indexes[i].Name)
		for k := range m.Indexes[i].PropertyKeys {
			m.Indexes[i].PropertyKeys[k].Name = strings.TrimSpace(m.Indexes[i].PropertyKeys[k].Name)
		}
	}
	prune := m.Prune[:0]
	for _, name := range m.Prune {
		if name = strings.TrimSpace(name); name != "" {
			prune = append(prune, name)
		}
	}
	m.Prune = prune
}

// Validate checks every definition and rejects duplicate index names and
// names that are both declared and pruned.
func (m *Manifest) Validate() error {
	if m.Schema == nil && len(m.Indexes) == 0 && len(m.Prune) == 0 {
		return errors.New("manifest declares no schema, indexes or prune entries")
	}
	if m.Schema != nil {
		if err := m.Schema.Validate(); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(m.Indexes))
	for i, def := range m.Indexes {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("indexes[%d]: %w", i, err)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("duplicate index name %q", def.Name)
		}
		seen[def.Name] = struct{}{}
	}
	for _, name := range m.Prune {
		if _, declared := seen[name]; declared {
			return fmt.Errorf("index %q is both declared and pruned", name)
		}
	}
	return nil
}

// Digest returns the hex sha256 of v's JSON encoding. Struct fields encode in
// declaration order and map keys sorted, so equal definitions share a digest.
func Digest(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
