package bench

import "testing"

func validConfigJSON() []byte {
	return []byte(`{
		"variant": "fine",
		"num_threads": 4,
		"runtime_in_sec": 1,
		"insert_pct": 40,
		"delete_pct": 40,
		"contains_pct": 20,
		"start_range": 0,
		"end_range": 1000,
		"disjoint_range": true,
		"selection_strategy": 0,
		"prefill_count": 100,
		"basic_testing": true,
		"seed": 1
	}`)
}

func TestParseConfigValid(t *testing.T) {
	cfg, err := ParseConfig(validConfigJSON())
	if err != nil {
		t.Fatalf("ParseConfig returned error for a valid config: %v", err)
	}
	if cfg.Variant != "fine" || cfg.NumThreads != 4 || cfg.EndRange != 1000 {
		t.Fatalf("unexpected decoded config: %+v", cfg)
	}
}

func TestParseConfigRejectsBadPercentages(t *testing.T) {
	raw := []byte(`{
		"num_threads": 1,
		"runtime_in_sec": 1,
		"insert_pct": 50,
		"delete_pct": 50,
		"contains_pct": 50,
		"start_range": 0,
		"end_range": 10,
		"selection_strategy": 0,
		"seed": 1
	}`)
	if _, err := ParseConfig(raw); err == nil {
		t.Fatalf("ParseConfig accepted percentages that do not sum to 100")
	}
}

func TestParseConfigRejectsBadStrategy(t *testing.T) {
	raw := []byte(`{
		"num_threads": 1,
		"runtime_in_sec": 1,
		"insert_pct": 34,
		"delete_pct": 33,
		"contains_pct": 33,
		"start_range": 0,
		"end_range": 10,
		"selection_strategy": 7,
		"seed": 1
	}`)
	if _, err := ParseConfig(raw); err == nil {
		t.Fatalf("ParseConfig accepted an out-of-range selection_strategy")
	}
}

func TestParseConfigRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseConfig([]byte(`{not json`)); err == nil {
		t.Fatalf("ParseConfig accepted malformed JSON")
	}
}

func TestConfigValidateCatchesBadRange(t *testing.T) {
	cfg := Config{NumThreads: 1, InsertPct: 34, DeletePct: 33, ContainsPct: 33, StartRange: 10, EndRange: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted start_range == end_range")
	}
}
