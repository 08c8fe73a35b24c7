package gpuspec

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSpecs(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "gpu_specs.json")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write specs: %v", err)
	}
	return p
}

const sampleSpecs = `{"gpus": [
	{"id": "rtx-4090", "display_name": "RTX 4090", "vram_gb": 24, "cost_per_hour": 0.34, "tier": "consumer"},
	{"id": "rtx-3070", "display_name": "RTX 3070", "vram_gb": 8, "cost_per_hour": 0.07, "tier": "consumer"},
	{"id": "h100", "display_name": "H100 80GB", "vram_gb": 80, "cost_per_hour": 1.99, "tier": "datacenter"}
]}`

func TestLoadAndGet(t *testing.T) {
	tbl, err := Load(writeSpecs(t, sampleSpecs))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("len=%d want 3", tbl.Len())
	}
	g, ok := tbl.Get("rtx-3070")
	if !ok {
		t.Fatalf("rtx-3070 missing")
	}
	if g.CostPerHour != 0.07 || g.VRAMGB != 8 {
		t.Fatalf("unexpected spec: %+v", g)
	}
	if _, ok := tbl.Get("no-such-gpu"); ok {
		t.Fatalf("lookup of unknown id succeeded")
	}
}

func TestListSortedByPrice(t *testing.T) {
	tbl, err := Load(writeSpecs(t, sampleSpecs))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	list := tbl.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].CostPerHour > list[i].CostPerHour {
			t.Fatalf("list not price-sorted: %v before %v", list[i-1].ID, list[i].ID)
		}
	}
	// Mutating the returned slice must not affect the table.
	list[0].ID = "mutated"
	if _, ok := tbl.Get("mutated"); ok {
		t.Fatalf("table mutated through List copy")
	}
}

func TestByTier(t *testing.T) {
	tbl, err := Load(writeSpecs(t, sampleSpecs))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	consumer := tbl.ByTier("consumer")
	if len(consumer) != 2 {
		t.Fatalf("consumer len=%d want 2", len(consumer))
	}
	if len(tbl.ByTier("quantum")) != 0 {
		t.Fatalf("unknown tier should be empty")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"empty list":   `{"gpus": []}`,
		"missing id":   `{"gpus": [{"display_name": "X", "cost_per_hour": 1}]}`,
		"duplicate id": `{"gpus": [{"id": "a", "cost_per_hour": 1}, {"id": "a", "cost_per_hour": 2}]}`,
		"not json":     `gpus: nope`,
	}
	for name, content := range cases {
		if _, err := Load(writeSpecs(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file: expected error")
	}
}
