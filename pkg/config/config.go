// Copyright 2025 Costbeacon Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for the Costbeacon
// reporting job.
//
// The job requires configuration for:
//   - Email delivery (sender, recipients, SES region)
//   - The S3 bucket holding the idempotency ledger
//   - Scan tuning (cost window, per-region timeout, worker cap)
//
// Configuration is read from environment variables via Viper. Everything is
// resolved once at process start into an explicit Config struct that is
// passed by reference into every component; business logic never reads the
// environment directly.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete reporting job configuration.
type Config struct {
	// SenderEmail is the verified SES identity used as the From address.
	SenderEmail string

	// RecipientEmails is the list of report recipients. Parsed from the
	// comma-separated RECIPIENT_EMAILS environment variable; entries are
	// trimmed and blank entries dropped. May be empty, in which case the
	// report is generated and persisted but no email is sent.
	RecipientEmails []string

	// SESRegion is the AWS region the SES client is created in. SES identity
	// verification is regional, so this may differ from the region the job
	// itself runs in.
	SESRegion string

	// BucketName is the S3 bucket holding execution markers and full report
	// snapshots.
	BucketName string

	// DefaultRegion is the AWS region used for non-regional API calls
	// (Cost Explorer, DescribeRegions, STS).
	DefaultRegion string

	// CostWindowDays is the size of the Cost Explorer lookback window.
	// Default: 30
	CostWindowDays int

	// RegionScanTimeout is the per-region ceiling for inventory scans.
	// A region that does not answer within this bound contributes nothing
	// to the report. Default: 30s
	RegionScanTimeout time.Duration

	// MaxScanWorkers caps the number of concurrent region scans.
	// Zero means min(32, 4 x logical cores).
	MaxScanWorkers int

	// LogLevel controls the verbosity of logs.
	// Valid values: debug, info, warn, error
	// Default: info
	LogLevel string
}

// Load reads configuration from the environment and validates it.
//
// Recognized environment variables (all optional):
//   - SENDER_EMAIL
//   - RECIPIENT_EMAILS (comma-separated)
//   - AWS_REGION_SES
//   - S3_BUCKET_NAME
//   - COSTBEACON_DEFAULT_REGION
//   - COSTBEACON_COST_WINDOW_DAYS
//   - COSTBEACON_REGION_SCAN_TIMEOUT (Go duration string)
//   - COSTBEACON_MAX_SCAN_WORKERS
//   - COSTBEACON_LOG_LEVEL
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("senderEmail", DefaultSenderEmail)
	v.SetDefault("recipientEmails", "")
	v.SetDefault("sesRegion", DefaultSESRegion)
	v.SetDefault("bucketName", DefaultBucketName)
	v.SetDefault("defaultRegion", DefaultRegion)
	v.SetDefault("costWindowDays", DefaultCostWindowDays)
	v.SetDefault("regionScanTimeout", DefaultRegionScanTimeout.String())
	v.SetDefault("maxScanWorkers", 0)
	v.SetDefault("logLevel", "info")

	// Manually bind each config key to its environment variable.
	// Viper's automatic mapping doesn't handle camelCase to
	// SCREAMING_SNAKE_CASE well, and the delivery variables keep the
	// legacy unprefixed names the deployment already sets.
	_ = v.BindEnv("senderEmail", "SENDER_EMAIL")
	_ = v.BindEnv("recipientEmails", "RECIPIENT_EMAILS")
	_ = v.BindEnv("sesRegion", "AWS_REGION_SES")
	_ = v.BindEnv("bucketName", "S3_BUCKET_NAME")
	_ = v.BindEnv("defaultRegion", "COSTBEACON_DEFAULT_REGION")
	_ = v.BindEnv("costWindowDays", "COSTBEACON_COST_WINDOW_DAYS")
	_ = v.BindEnv("regionScanTimeout", "COSTBEACON_REGION_SCAN_TIMEOUT")
	_ = v.BindEnv("maxScanWorkers", "COSTBEACON_MAX_SCAN_WORKERS")
	_ = v.BindEnv("logLevel", "COSTBEACON_LOG_LEVEL")

	timeout, err := time.ParseDuration(v.GetString("regionScanTimeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid region scan timeout %q: %w", v.GetString("regionScanTimeout"), err)
	}

	cfg := &Config{
		SenderEmail:       v.GetString("senderEmail"),
		RecipientEmails:   splitRecipients(v.GetString("recipientEmails")),
		SESRegion:         v.GetString("sesRegion"),
		BucketName:        v.GetString("bucketName"),
		DefaultRegion:     v.GetString("defaultRegion"),
		CostWindowDays:    v.GetInt("costWindowDays"),
		RegionScanTimeout: timeout,
		MaxScanWorkers:    v.GetInt("maxScanWorkers"),
		LogLevel:          v.GetString("logLevel"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SenderEmail) == "" {
		return fmt.Errorf("sender email must not be blank")
	}

	if strings.TrimSpace(c.BucketName) == "" {
		return fmt.Errorf("bucket name must not be blank")
	}

	if c.CostWindowDays <= 0 {
		return fmt.Errorf("cost window days must be positive, got %d", c.CostWindowDays)
	}

	if c.RegionScanTimeout <= 0 {
		return fmt.Errorf("region scan timeout must be positive, got %s", c.RegionScanTimeout)
	}

	if c.MaxScanWorkers < 0 {
		return fmt.Errorf("max scan workers must not be negative, got %d", c.MaxScanWorkers)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	return nil
}

// ScanWorkers returns the effective worker-pool cap for region scans:
// the configured override if set, otherwise min(32, 4 x logical cores).
func (c *Config) ScanWorkers() int {
	if c.MaxScanWorkers > 0 {
		return c.MaxScanWorkers
	}
	workers := runtime.NumCPU() * 4
	if workers > MaxDefaultScanWorkers {
		workers = MaxDefaultScanWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// splitRecipients parses a comma-separated recipient list, trimming
// whitespace and dropping empty entries. An all-blank input yields nil.
func splitRecipients(raw string) []string {
	var recipients []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			recipients = append(recipients, part)
		}
	}
	return recipients
}
