package config

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitQueries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"defaults", "gaming,music,cooking", []string{"gaming", "music", "cooking"}},
		{"trims blanks", " gaming , ,music ", []string{"gaming", "music"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitQueries(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitQueries(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RECOMMEND_FANOUT_LIMIT", "")
	t.Setenv("TIKAPI_KEY", "")
	t.Setenv("TIKAPI_ACCOUNT_KEY", "")

	cfg := Load()
	if cfg.FanOutLimit != 5 {
		t.Errorf("FanOutLimit = %d, want 5", cfg.FanOutLimit)
	}
	if cfg.HasTikAPICredentials() {
		t.Error("HasTikAPICredentials() = true with no keys set")
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RECOMMEND_FANOUT_LIMIT", "lots")
	t.Setenv("SCRAPE_INTERVAL_MINUTES", "2")

	cfg := Load()
	if cfg.FanOutLimit != 5 {
		t.Errorf("FanOutLimit = %d, want fallback 5", cfg.FanOutLimit)
	}
	if cfg.ScrapeInterval != 2*time.Minute {
		t.Errorf("ScrapeInterval = %v, want 2m", cfg.ScrapeInterval)
	}
}

func TestLoad_EnableScheduler(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"false", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Setenv("ENABLE_SCHEDULER", tt.raw)
		if got := Load().EnableScheduler; got != tt.want {
			t.Errorf("ENABLE_SCHEDULER=%q -> %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestApplyYAML(t *testing.T) {
	y, err := ParseYAMLConfig([]byte(`
queries:
  - makeup
  - " "
  - chess
scheduler:
  enabled: true
  interval_minutes: 15
discovery:
  fanout_limit: 8
`))
	if err != nil {
		t.Fatalf("ParseYAMLConfig() error = %v", err)
	}

	cfg := &Config{FanOutLimit: 5, FanOutConcurrency: 5, SearchQueries: []string{"gaming"}}
	cfg.ApplyYAML(y)

	if !reflect.DeepEqual(cfg.SearchQueries, []string{"makeup", "chess"}) {
		t.Errorf("SearchQueries = %v", cfg.SearchQueries)
	}
	if !cfg.EnableScheduler {
		t.Error("EnableScheduler = false, want true")
	}
	if cfg.ScrapeInterval != 15*time.Minute {
		t.Errorf("ScrapeInterval = %v, want 15m", cfg.ScrapeInterval)
	}
	if cfg.FanOutLimit != 8 || cfg.FanOutConcurrency != 5 {
		t.Errorf("fan-out = %d/%d, want 8/5", cfg.FanOutLimit, cfg.FanOutConcurrency)
	}

	// nil leaves everything alone
	cfg.ApplyYAML(nil)
	if cfg.FanOutLimit != 8 {
		t.Errorf("ApplyYAML(nil) changed FanOutLimit to %d", cfg.FanOutLimit)
	}
}
