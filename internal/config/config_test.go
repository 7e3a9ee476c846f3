package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.InstallBase.Bucket != "installBase" || !cfg.InstallBase.PathStyle {
		t.Fatalf("unexpected install base store: %+v", cfg.InstallBase)
	}
	if cfg.Insights.Bucket != "munger-insights" || cfg.Insights.PathStyle {
		t.Fatalf("unexpected insights store: %+v", cfg.Insights)
	}
	if cfg.WorklistKey != "PNWandNCAcustomers.json" {
		t.Fatalf("WorklistKey = %q", cfg.WorklistKey)
	}
	if cfg.MungerVersion != "3" || cfg.InsightTag != "SNSO" {
		t.Fatalf("version/tag = %q/%q", cfg.MungerVersion, cfg.InsightTag)
	}
	if cfg.CycleInterval != 7*24*time.Hour {
		t.Fatalf("CycleInterval = %v", cfg.CycleInterval)
	}
	if cfg.CallTimeout != 0 || cfg.DryRun {
		t.Fatalf("CallTimeout/DryRun = %v/%v", cfg.CallTimeout, cfg.DryRun)
	}
	if cfg.MasterListPath != "allSNs.txt" {
		t.Fatalf("MasterListPath = %q", cfg.MasterListPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INSTALLBASE_ENDPOINT", "http://10.5.208.212:9020")
	t.Setenv("INSTALLBASE_ACCESS_KEY_ID", "ak")
	t.Setenv("INSTALLBASE_SECRET_ACCESS_KEY", "sk")
	t.Setenv("INSIGHTS_BUCKET", "other-insights")
	t.Setenv("MUNGER_CYCLE_INTERVAL", "24h")
	t.Setenv("MUNGER_CALL_TIMEOUT", "30s")
	t.Setenv("MUNGER_DRY_RUN", "true")
	t.Setenv("MUNGER_LEDGER_TABLE", "munger-cycles")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InstallBase.Endpoint != "http://10.5.208.212:9020" || cfg.InstallBase.AccessKeyID != "ak" {
		t.Fatalf("install base = %+v", cfg.InstallBase)
	}
	if cfg.Insights.Bucket != "other-insights" {
		t.Fatalf("insights bucket = %q", cfg.Insights.Bucket)
	}
	if cfg.CycleInterval != 24*time.Hour || cfg.CallTimeout != 30*time.Second || !cfg.DryRun {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.LedgerTable != "munger-cycles" {
		t.Fatalf("LedgerTable = %q", cfg.LedgerTable)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad interval", map[string]string{"MUNGER_CYCLE_INTERVAL": "weekly"}, "MUNGER_CYCLE_INTERVAL"},
		{"zero interval", map[string]string{"MUNGER_CYCLE_INTERVAL": "0"}, "must be positive"},
		{"bad bool", map[string]string{"MUNGER_DRY_RUN": "maybe"}, "MUNGER_DRY_RUN"},
		{"half creds", map[string]string{"INSIGHTS_ACCESS_KEY_ID": "ak"}, "INSIGHTS_SECRET_ACCESS_KEY"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("err = %v, want mention of %q", err, c.want)
			}
		})
	}
}
