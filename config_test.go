package networth

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "networth.db" || cfg.Settlement != "USD" {
		t.Errorf("defaults = %q/%q, want networth.db/USD", cfg.DBPath, cfg.Settlement)
	}
	interval, err := cfg.Schedule.ParseInterval()
	if err != nil {
		t.Fatal(err)
	}
	if interval.Hours() != 24 {
		t.Errorf("default interval = %s, want 24h", interval)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/books.db
settlement: HKD
rates:
  JPY: 150
schedule:
  interval: 1h
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/books.db" || cfg.Settlement != "HKD" {
		t.Errorf("got %q/%q", cfg.DBPath, cfg.Settlement)
	}

	rates, err := cfg.RateTable()
	if err != nil {
		t.Fatal(err)
	}
	// Overrides merge over the defaults.
	if rates["JPY"] != 150 {
		t.Errorf("JPY rate = %v, want 150", rates["JPY"])
	}
	if rates["HKD"] != 7.8 {
		t.Errorf("HKD rate = %v, want the 7.8 default", rates["HKD"])
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"bad_settlement": "settlement: dollars\n",
		"bad_rate":       "rates:\n  HKD: -1\n",
		"bad_interval":   "schedule:\n  interval: often\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestRateTableRequiresSettlementRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settlement = "JPY"
	if _, err := cfg.RateTable(); err == nil {
		t.Error("expected an error for a settlement currency without a rate")
	}
}
