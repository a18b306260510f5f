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

// Package report merges the cost model and the fleet-scan output into the
// single report object that is persisted and emailed.
package report

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/costbeacon/costbeacon/internal/costs"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

// Stats summarizes one execution.
type Stats struct {
	RegionsChecked        int     `json:"regions_checked"`
	ResourcesFound        int     `json:"resources_found"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// Report is the complete daily report: the 30-day cost picture correlated
// with the live resource inventory. It is built once per execution and not
// mutated after assembly, except for the delivery outcome stamped on it by
// the runner.
type Report struct {
	Timestamp   string `json:"timestamp"`
	ExecutionID string `json:"execution_id"`
	AccountID   string `json:"account_id,omitempty"`

	TotalCost decimal.Decimal `json:"total_cost"`

	// CostByService maps billing service name to its 30-day cost.
	CostByService *costs.ServiceCosts `json:"resources_by_service"`

	// CostBreakdown is the per-service usage-type breakdown.
	CostBreakdown *costs.Breakdown `json:"detailed_cost_breakdown"`

	// ResourcesByRegion groups inventoried resources by region, with
	// account-wide resources under the "global" pseudo-region.
	ResourcesByRegion map[string][]aws.Resource `json:"resources_by_region"`

	// DetailedResources is the flat list: the global resources followed by
	// every region's resources in region-name order.
	DetailedResources []aws.Resource `json:"detailed_resources"`

	ProcessingStats Stats `json:"processing_stats"`

	// EmailSent records the delivery outcome; stamped by the runner after
	// notification.
	EmailSent bool `json:"email_sent"`
}

// Assemble merges the cost model and the fleet-scan output into a Report.
// Pure merge: no I/O and no failure modes.
//
// byRegion is the fleet-scan map (which already carries the global list
// under the "global" key); global is the same list separately. The
// detailed list counts each resource exactly once: global first, then
// regions in name order.
func Assemble(
	executionID string,
	accountID string,
	generatedAt time.Time,
	model *costs.Model,
	byRegion map[string][]aws.Resource,
	global []aws.Resource,
	elapsed time.Duration,
) *Report {
	detailed := make([]aws.Resource, 0, len(global))
	detailed = append(detailed, global...)

	regions := lo.Keys(byRegion)
	sort.Strings(regions)
	for _, region := range regions {
		if region == aws.GlobalRegion {
			continue
		}
		detailed = append(detailed, byRegion[region]...)
	}

	return &Report{
		Timestamp:         generatedAt.UTC().Format(time.RFC3339),
		ExecutionID:       executionID,
		AccountID:         accountID,
		TotalCost:         model.TotalCost,
		CostByService:     model.ByService,
		CostBreakdown:     model.Breakdown,
		ResourcesByRegion: byRegion,
		DetailedResources: detailed,
		ProcessingStats: Stats{
			RegionsChecked:        len(byRegion),
			ResourcesFound:        len(detailed),
			ProcessingTimeSeconds: roundSeconds(elapsed),
		},
	}
}

// roundSeconds converts a duration to seconds with 2-decimal precision.
func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}
