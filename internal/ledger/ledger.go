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

// Package ledger guards at-most-once report delivery per calendar day with
// an execution marker in durable storage.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/costbeacon/costbeacon/internal/report"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

const (
	executionKeyFormat = "executions/%s.json"
	reportKeyFormat    = "reports/%s-full-report.json"
	contentTypeJSON    = "application/json"
)

// ExecutionID derives the daily idempotency key from a calendar date.
func ExecutionID(t time.Time) string {
	return "cost-report-" + t.Format("2006-01-02")
}

// Marker is the summary record stored per execution. Its existence is the
// sole gate condition: no TTL, no retry count.
type Marker struct {
	ExecutionID     string          `json:"execution_id"`
	ProcessedAt     string          `json:"processed_at"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ResourcesCount  int             `json:"resources_count"`
	ProcessingStats report.Stats    `json:"processing_stats"`
}

// Gate checks and records daily execution markers.
type Gate struct {
	storage aws.StorageClient
	bucket  string
	log     logr.Logger

	// now is swappable for deterministic timestamps in tests.
	now func() time.Time
}

// NewGate creates a Gate over the given storage bucket.
func NewGate(storage aws.StorageClient, bucket string, log logr.Logger) *Gate {
	return &Gate{
		storage: storage,
		bucket:  bucket,
		log:     log.WithName("ledger"),
		now:     time.Now,
	}
}

// AlreadyProcessed reports whether a marker exists for the execution ID.
// Lookup errors are treated as "not processed": an occasional duplicate
// report beats a storage hiccup silently dropping a day.
func (g *Gate) AlreadyProcessed(ctx context.Context, executionID string) bool {
	key := fmt.Sprintf(executionKeyFormat, executionID)
	exists, err := g.storage.Exists(ctx, g.bucket, key)
	if err != nil {
		g.log.Error(err, "marker lookup failed, assuming not processed", "execution_id", executionID)
		return false
	}
	if exists {
		g.log.Info("found existing execution marker", "execution_id", executionID)
	}
	return exists
}

// MarkProcessed writes the summary marker and the full report snapshot.
// Write failures are logged and swallowed: failing to persist the marker
// must not block the report from going out.
func (g *Gate) MarkProcessed(ctx context.Context, executionID string, rep *report.Report) {
	marker := Marker{
		ExecutionID:     executionID,
		ProcessedAt:     g.now().UTC().Format(time.RFC3339),
		TotalCost:       rep.TotalCost,
		ResourcesCount:  len(rep.DetailedResources),
		ProcessingStats: rep.ProcessingStats,
	}

	if body, err := json.MarshalIndent(marker, "", "  "); err != nil {
		g.log.Error(err, "failed to encode execution marker", "execution_id", executionID)
	} else {
		key := fmt.Sprintf(executionKeyFormat, executionID)
		if err := g.storage.Put(ctx, g.bucket, key, body, contentTypeJSON); err != nil {
			g.log.Error(err, "failed to store execution marker", "execution_id", executionID)
		}
	}

	if body, err := json.MarshalIndent(rep, "", "  "); err != nil {
		g.log.Error(err, "failed to encode report snapshot", "execution_id", executionID)
	} else {
		key := fmt.Sprintf(reportKeyFormat, executionID)
		if err := g.storage.Put(ctx, g.bucket, key, body, contentTypeJSON); err != nil {
			g.log.Error(err, "failed to store report snapshot", "execution_id", executionID)
		}
	}

	g.log.Info("marked execution as processed", "execution_id", executionID)
}
