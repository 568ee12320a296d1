// Package config reads runtime settings from the environment (and a local .env file).
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Region    string
	RunLocal  bool
	LogLevel  string
	Tables    TablesConfig
	Bucket    string
	WSAPI     string
	Import    ImportConfig
	Analytics AnalyticsConfig
	Metrics   MetricsConfig
	Sweep     SweepConfig
}

type TablesConfig struct {
	Invoices string
	Events   string
}

type ImportConfig struct {
	UploadURLTTL   time.Duration
	TransactionTTL time.Duration
}

type AnalyticsConfig struct {
	EventTTL time.Duration
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

type SweepConfig struct {
	Notify bool
	Limit  int32
}

// Requirement names a setting an entrypoint cannot run without.
type Requirement int

const (
	RequireInvoicesTable Requirement = iota
	RequireEventsTable
	RequireBucket
	RequireWSAPI
)

// Load reads configuration and checks that every requirement is present.
func Load(reqs ...Requirement) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment only")
	}
	return load(viper.New(), reqs...)
}

func load(v *viper.Viper, reqs ...Requirement) (Config, error) {
	v.AutomaticEnv()

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("run_local", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("invoice_ddb", "")
	v.SetDefault("events_ddb", "")
	v.SetDefault("bucket_name", "")
	v.SetDefault("invoice_wsapi_endpoint", "")
	v.SetDefault("upload_url_ttl_seconds", 300)
	v.SetDefault("transaction_ttl_seconds", 120)
	v.SetDefault("analytics_event_ttl_seconds", 3600)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_namespace", "InvoiceImport")
	v.SetDefault("sweep_notify", false)
	v.SetDefault("sweep_limit", 100)

	cfg := Config{
		Region:   strings.TrimSpace(v.GetString("aws_region")),
		RunLocal: v.GetBool("run_local"),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Tables: TablesConfig{
			Invoices: strings.TrimSpace(v.GetString("invoice_ddb")),
			Events:   strings.TrimSpace(v.GetString("events_ddb")),
		},
		Bucket: strings.TrimSpace(v.GetString("bucket_name")),
		WSAPI:  strings.TrimSpace(v.GetString("invoice_wsapi_endpoint")),
		Analytics: AnalyticsConfig{
			EventTTL: time.Duration(v.GetInt("analytics_event_ttl_seconds")) * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("metrics_enabled"),
			Namespace: strings.TrimSpace(v.GetString("metrics_namespace")),
		},
		Sweep: SweepConfig{
			Notify: v.GetBool("sweep_notify"),
		},
	}

	urlTTL := v.GetInt("upload_url_ttl_seconds")
	if urlTTL <= 0 {
		return Config{}, fmt.Errorf("invalid UPLOAD_URL_TTL_SECONDS: %d", urlTTL)
	}
	txTTL := v.GetInt("transaction_ttl_seconds")
	if txTTL <= 0 {
		return Config{}, fmt.Errorf("invalid TRANSACTION_TTL_SECONDS: %d", txTTL)
	}
	cfg.Import = ImportConfig{
		UploadURLTTL:   time.Duration(urlTTL) * time.Second,
		TransactionTTL: time.Duration(txTTL) * time.Second,
	}

	if cfg.Analytics.EventTTL <= 0 {
		cfg.Analytics.EventTTL = time.Hour
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "InvoiceImport"
	}

	limit := v.GetInt("sweep_limit")
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	cfg.Sweep.Limit = int32(limit)

	var missing []string
	for _, r := range reqs {
		switch r {
		case RequireInvoicesTable:
			if cfg.Tables.Invoices == "" {
				missing = append(missing, "INVOICE_DDB")
			}
		case RequireEventsTable:
			if cfg.Tables.Events == "" {
				missing = append(missing, "EVENTS_DDB")
			}
		case RequireBucket:
			if cfg.Bucket == "" {
				missing = append(missing, "BUCKET_NAME")
			}
		case RequireWSAPI:
			if cfg.WSAPI == "" {
				missing = append(missing, "INVOICE_WSAPI_ENDPOINT")
			}
		}
	}
	if len(missing) > 0 {
		return Config{}, errors.New("missing env " + strings.Join(missing, ", "))
	}

	return cfg, nil
}
