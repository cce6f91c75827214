package core

import (
	"fmt"
	"slices"
)

// FileConfig describes how one file kind maps onto the relational store.
// Columns are positional: field i of every record lands in Columns[i], and
// the order must match both the file layout and the staging table.
type FileConfig struct {
	Kind         FileKind
	Table        string
	StagingTable string
	Columns      []string
	PrimaryKey   []string
}

// NonKeyColumns returns the columns outside the primary key, in column order.
func (c FileConfig) NonKeyColumns() []string {
	out := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		if !slices.Contains(c.PrimaryKey, col) {
			out = append(out, col)
		}
	}
	return out
}

// keyPositions returns the index in Columns of each primary-key column.
func (c FileConfig) keyPositions() []int {
	pos := make([]int, len(c.PrimaryKey))
	for i, pk := range c.PrimaryKey {
		pos[i] = slices.Index(c.Columns, pk)
	}
	return pos
}

func (c FileConfig) validate() error {
	if c.Kind == "" {
		return fmt.Errorf("file config for table %q has no kind", c.Table)
	}
	if c.Table == "" || c.StagingTable == "" {
		return fmt.Errorf("%s: table and staging table are required", c.Kind)
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("%s: no columns", c.Kind)
	}
	if len(c.PrimaryKey) == 0 {
		return fmt.Errorf("%s: no primary key columns", c.Kind)
	}

	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if seen[col] {
			return fmt.Errorf("%s: duplicate column %q", c.Kind, col)
		}
		seen[col] = true
	}
	for _, pk := range c.PrimaryKey {
		if !seen[pk] {
			return fmt.Errorf("%s: primary key column %q is not a column", c.Kind, pk)
		}
	}
	if len(c.NonKeyColumns()) == 0 {
		return fmt.Errorf("%s: every column is part of the primary key", c.Kind)
	}
	return nil
}

// Registry maps file kinds to their FileConfig.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	configs map[FileKind]FileConfig
}

// NewRegistry validates configs and builds a Registry.
// Each kind may appear only once.
func NewRegistry(configs ...FileConfig) (*Registry, error) {
	r := &Registry{configs: make(map[FileKind]FileConfig, len(configs))}

	for _, c := range configs {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if _, exists := r.configs[c.Kind]; exists {
			return nil, fmt.Errorf("registry: kind already registered: %s", c.Kind)
		}

		// Copy slices so callers cannot mutate registered layouts.
		c.Columns = slices.Clone(c.Columns)
		c.PrimaryKey = slices.Clone(c.PrimaryKey)
		r.configs[c.Kind] = c
	}

	return r, nil
}

// Lookup returns the FileConfig for kind.
func (r *Registry) Lookup(kind FileKind) (FileConfig, error) {
	c, ok := r.configs[kind]
	if !ok {
		return FileConfig{}, fmt.Errorf("%w: %q", ErrUnknownFileKind, kind)
	}
	return c, nil
}

// Kinds returns registered kinds in load order.
func (r *Registry) Kinds() []FileKind {
	out := make([]FileKind, 0, len(r.configs))
	for _, k := range LoadOrder {
		if _, ok := r.configs[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
