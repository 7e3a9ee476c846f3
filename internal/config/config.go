// Package config loads the munger settings from environment variables
// (optionally populated from a .env file by the cmd mains).
package config

import (
	"errors"
	"time"
)

// StoreConfig describes one S3-compatible object store endpoint and bucket.
type StoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	// CredsParam names an SSM parameter holding a JSON service binding.
	// When set it takes precedence over the static keys.
	CredsParam string
}

// Config holds everything the munger binaries need.
type Config struct {
	InstallBase StoreConfig
	Insights    StoreConfig

	WorklistKey    string
	MungerVersion  string
	InsightTag     string
	CycleInterval  time.Duration
	MasterListPath string
	CallTimeout    time.Duration
	DryRun         bool

	LedgerTable    string
	LedgerTTL      time.Duration
	NotifyTopicARN string
	ParquetPrefix  string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	root := Env{}

	ib, err := loadStore(root.Prefix("INSTALLBASE_"), "installBase", true)
	if err != nil {
		return nil, err
	}
	out, err := loadStore(root.Prefix("INSIGHTS_"), "munger-insights", false)
	if err != nil {
		return nil, err
	}

	m := root.Prefix("MUNGER_")
	cfg := &Config{
		InstallBase:    ib,
		Insights:       out,
		WorklistKey:    m.String("WORKLIST_KEY", "PNWandNCAcustomers.json"),
		MungerVersion:  m.String("VERSION", "3"),
		InsightTag:     m.String("INSIGHT_TAG", "SNSO"),
		MasterListPath: m.String("MASTER_LIST_PATH", "allSNs.txt"),
		LedgerTable:    m.String("LEDGER_TABLE", ""),
		NotifyTopicARN: m.String("NOTIFY_TOPIC_ARN", ""),
		ParquetPrefix:  m.String("PARQUET_PREFIX", ""),
	}

	if cfg.CycleInterval, err = m.Duration("CYCLE_INTERVAL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CycleInterval == 0 {
		return nil, errors.New("MUNGER_CYCLE_INTERVAL must be positive")
	}
	if cfg.CallTimeout, err = m.Duration("CALL_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.LedgerTTL, err = m.Duration("LEDGER_TTL", 90*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = m.Bool("DRY_RUN", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadStore(e Env, defBucket string, defPathStyle bool) (StoreConfig, error) {
	pathStyle, err := e.Bool("PATH_STYLE", defPathStyle)
	if err != nil {
		return StoreConfig{}, err
	}
	sc := StoreConfig{
		Endpoint:        e.String("ENDPOINT", ""),
		Region:          e.String("REGION", "us-east-1"),
		Bucket:          e.String("BUCKET", defBucket),
		PathStyle:       pathStyle,
		AccessKeyID:     e.String("ACCESS_KEY_ID", ""),
		SecretAccessKey: e.String("SECRET_ACCESS_KEY", ""),
		CredsParam:      e.String("CREDS_PARAM", ""),
	}
	if (sc.AccessKeyID == "") != (sc.SecretAccessKey == "") {
		return StoreConfig{}, errors.New(e.key("ACCESS_KEY_ID") + " and " + e.key("SECRET_ACCESS_KEY") + " must be set together")
	}
	return sc, nil
}
