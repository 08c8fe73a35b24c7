// Package gpuspec loads the read-only GPU price/spec table. The table is
// parsed once at process start and treated as immutable afterwards.
package gpuspec

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"podd/pkg/types"
)

// Table is an immutable gpu_id -> spec mapping.
type Table struct {
	byID map[string]types.GPU
	list []types.GPU
}

type specsFile struct {
	GPUs []types.GPU `json:"gpus"`
}

// Load reads a {"gpus": [...]} JSON file and builds the table.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gpu specs: %w", err)
	}
	var f specsFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse gpu specs: %w", err)
	}
	if len(f.GPUs) == 0 {
		return nil, fmt.Errorf("gpu specs file %s contains no entries", path)
	}
	t := &Table{byID: make(map[string]types.GPU, len(f.GPUs))}
	for _, g := range f.GPUs {
		if g.ID == "" {
			return nil, fmt.Errorf("gpu specs file %s: entry without id", path)
		}
		if _, dup := t.byID[g.ID]; dup {
			return nil, fmt.Errorf("gpu specs file %s: duplicate id %q", path, g.ID)
		}
		t.byID[g.ID] = g
		t.list = append(t.list, g)
	}
	sort.Slice(t.list, func(i, j int) bool { return t.list[i].CostPerHour < t.list[j].CostPerHour })
	return t, nil
}

// Get looks up a GPU spec by id.
func (t *Table) Get(id string) (types.GPU, bool) {
	g, ok := t.byID[id]
	return g, ok
}

// List returns all specs sorted by price ascending. The returned slice is a
// copy so callers cannot mutate the table.
func (t *Table) List() []types.GPU {
	out := make([]types.GPU, len(t.list))
	copy(out, t.list)
	return out
}

// ByTier returns all specs of one hardware tier, price ascending.
func (t *Table) ByTier(tier string) []types.GPU {
	var out []types.GPU
	for _, g := range t.list {
		if g.Tier == tier {
			out = append(out, g)
		}
	}
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.list) }
