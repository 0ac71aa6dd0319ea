package perantara

import "testing"

func TestMergeConfigCallerWins(t *testing.T) {
	base := Config{
		URL:    "https://example.com/base",
		Method: "GET",
		Data:   "base-data",
	}
	override := Config{
		URL:    "https://example.com/override",
		Method: "POST",
	}

	merged := mergeConfig(base, override)

	if merged.URL != "https://example.com/override" {
		t.Errorf("Expected override URL, got %s", merged.URL)
	}
	if merged.Method != "POST" {
		t.Errorf("Expected override method, got %s", merged.Method)
	}
	if merged.Data != "base-data" {
		t.Errorf("Unset override field replaced base Data: %v", merged.Data)
	}
}

func TestMergeConfigHeaderKeyWise(t *testing.T) {
	base := Config{
		Header: map[string]string{
			"content-type": ContentTypeJSON,
			"x-base":       "keep",
		},
	}
	override := Config{
		Header: map[string]string{
			"x-base":  "replaced",
			"x-token": "abc",
		},
	}

	merged := mergeConfig(base, override)

	if merged.Header["content-type"] != ContentTypeJSON {
		t.Errorf("Base-only header key lost: %v", merged.Header)
	}
	if merged.Header["x-base"] != "replaced" {
		t.Errorf("Override should win on conflicting key, got %s", merged.Header["x-base"])
	}
	if merged.Header["x-token"] != "abc" {
		t.Errorf("Override-only header key lost: %v", merged.Header)
	}

	// Inputs must stay untouched.
	if base.Header["x-base"] != "keep" {
		t.Errorf("Merge mutated base header: %v", base.Header)
	}
	if len(override.Header) != 2 {
		t.Errorf("Merge mutated override header: %v", override.Header)
	}
}

func TestMergeConfigExtraReplacesWholesale(t *testing.T) {
	base := Config{
		Extra: map[string]interface{}{"timeout": 5, "keep": true},
	}
	override := Config{
		Extra: map[string]interface{}{"timeout": 10},
	}

	merged := mergeConfig(base, override)

	if len(merged.Extra) != 1 {
		t.Fatalf("Extra should replace wholesale, got %v", merged.Extra)
	}
	if merged.Extra["timeout"] != 10 {
		t.Errorf("Expected override Extra value, got %v", merged.Extra["timeout"])
	}
}

func TestApplyDefaultHeader(t *testing.T) {
	cfg := Config{}
	applyDefaultHeader(&cfg)

	if cfg.Header["content-type"] != ContentTypeJSON {
		t.Errorf("Expected default content-type, got %v", cfg.Header)
	}

	// A caller-supplied content-type survives regardless of case.
	cfg = Config{Header: map[string]string{"Content-Type": "text/plain"}}
	applyDefaultHeader(&cfg)

	if len(cfg.Header) != 1 {
		t.Errorf("Default duplicated an existing content-type: %v", cfg.Header)
	}
	if cfg.Header["Content-Type"] != "text/plain" {
		t.Errorf("Caller content-type replaced: %v", cfg.Header)
	}
}

func TestConfigCloneIsolation(t *testing.T) {
	cfg := Config{
		Header: map[string]string{"x-a": "1"},
		Extra:  map[string]interface{}{"k": "v"},
	}

	clone := cfg.Clone()
	clone.Header["x-a"] = "2"
	clone.Extra["k"] = "w"

	if cfg.Header["x-a"] != "1" {
		t.Errorf("Clone shares header map with original")
	}
	if cfg.Extra["k"] != "v" {
		t.Errorf("Clone shares extra map with original")
	}
}
