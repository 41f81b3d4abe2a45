package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads every .yml/.yaml descriptor under dir into a validated
// registry. The file name (without extension) is the fallback UID when the
// descriptor omits one.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ct, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(ct); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema in %s: %w", dir, err)
	}
	return reg, nil
}

// LoadFile parses one YAML descriptor.
func LoadFile(path string) (*ContentType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	ct, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}

	if ct.UID == "" {
		base := filepath.Base(path)
		ct.UID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ct, nil
}

// Parse decodes a YAML descriptor. Unknown fields are rejected so schema
// typos fail at load time rather than silently dropping constraints.
func Parse(raw []byte) (*ContentType, error) {
	var ct ContentType
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&ct); err != nil {
		return nil, err
	}
	if ct.ModelType == "" {
		ct.ModelType = ModelContentType
	}
	return &ct, nil
}
