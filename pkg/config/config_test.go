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

package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultSenderEmail, cfg.SenderEmail)
	assert.Empty(t, cfg.RecipientEmails)
	assert.Equal(t, DefaultSESRegion, cfg.SESRegion)
	assert.Equal(t, DefaultBucketName, cfg.BucketName)
	assert.Equal(t, DefaultRegion, cfg.DefaultRegion)
	assert.Equal(t, DefaultCostWindowDays, cfg.CostWindowDays)
	assert.Equal(t, DefaultRegionScanTimeout, cfg.RegionScanTimeout)
	assert.Zero(t, cfg.MaxScanWorkers)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SENDER_EMAIL", "billing@example.com")
	t.Setenv("RECIPIENT_EMAILS", "a@example.com, b@example.com ,, ")
	t.Setenv("AWS_REGION_SES", "us-west-2")
	t.Setenv("S3_BUCKET_NAME", "my-state-bucket")
	t.Setenv("COSTBEACON_COST_WINDOW_DAYS", "7")
	t.Setenv("COSTBEACON_REGION_SCAN_TIMEOUT", "45s")
	t.Setenv("COSTBEACON_MAX_SCAN_WORKERS", "8")
	t.Setenv("COSTBEACON_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "billing@example.com", cfg.SenderEmail)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.RecipientEmails,
		"recipients are trimmed and blanks dropped")
	assert.Equal(t, "us-west-2", cfg.SESRegion)
	assert.Equal(t, "my-state-bucket", cfg.BucketName)
	assert.Equal(t, 7, cfg.CostWindowDays)
	assert.Equal(t, 45*time.Second, cfg.RegionScanTimeout)
	assert.Equal(t, 8, cfg.MaxScanWorkers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("COSTBEACON_REGION_SCAN_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SenderEmail:       "billing@example.com",
			BucketName:        "bucket",
			CostWindowDays:    30,
			RegionScanTimeout: 30 * time.Second,
			LogLevel:          "info",
		}
	}

	assert.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"blank sender":      func(c *Config) { c.SenderEmail = "  " },
		"blank bucket":      func(c *Config) { c.BucketName = "" },
		"zero cost window":  func(c *Config) { c.CostWindowDays = 0 },
		"negative timeout":  func(c *Config) { c.RegionScanTimeout = -time.Second },
		"negative workers":  func(c *Config) { c.MaxScanWorkers = -1 },
		"unknown log level": func(c *Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScanWorkers(t *testing.T) {
	cfg := &Config{MaxScanWorkers: 12}
	assert.Equal(t, 12, cfg.ScanWorkers(), "explicit override wins")

	cfg = &Config{}
	derived := cfg.ScanWorkers()
	expected := runtime.NumCPU() * 4
	if expected > MaxDefaultScanWorkers {
		expected = MaxDefaultScanWorkers
	}
	assert.Equal(t, expected, derived)
	assert.LessOrEqual(t, derived, MaxDefaultScanWorkers)
	assert.GreaterOrEqual(t, derived, 1)
}

func TestSplitRecipients(t *testing.T) {
	assert.Nil(t, splitRecipients(""))
	assert.Nil(t, splitRecipients(" , ,"))
	assert.Equal(t, []string{"a@example.com"}, splitRecipients("a@example.com"))
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com"},
		splitRecipients(" a@example.com ,b@example.com"))
}
