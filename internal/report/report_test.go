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

package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbeacon/costbeacon/internal/costs"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

func TestAssemble_DetailedCountsEachResourceOnce(t *testing.T) {
	global := []aws.Resource{
		{Service: aws.ServiceCloudFront, ResourceID: "E1", Region: aws.GlobalRegion},
	}
	byRegion := map[string][]aws.Resource{
		"us-east-1": {
			{Service: aws.ServiceEC2, ResourceID: "i-1", Region: "us-east-1"},
			{Service: aws.ServiceEBS, ResourceID: "vol-1", Region: "us-east-1"},
		},
		"eu-west-1": {
			{Service: aws.ServiceRDS, ResourceID: "db-1", Region: "eu-west-1"},
		},
		aws.GlobalRegion: global,
	}

	rep := Assemble("cost-report-2025-03-07", "123456789012",
		time.Now(), costs.NewModel(), byRegion, global, time.Second)

	// Global resources appear once, not once from the list and once from
	// the map's "global" key.
	require.Len(t, rep.DetailedResources, 4)
	assert.Equal(t, "E1", rep.DetailedResources[0].ResourceID, "global resources lead the list")

	// Regions follow in name order.
	assert.Equal(t, "db-1", rep.DetailedResources[1].ResourceID)
	assert.Equal(t, "i-1", rep.DetailedResources[2].ResourceID)
	assert.Equal(t, "vol-1", rep.DetailedResources[3].ResourceID)
}

func TestAssemble_Stats(t *testing.T) {
	byRegion := map[string][]aws.Resource{
		"us-east-1": {{Service: aws.ServiceEC2, ResourceID: "i-1"}},
	}

	rep := Assemble("cost-report-2025-03-07", "",
		time.Now(), costs.NewModel(), byRegion, nil, 2347*time.Millisecond)

	assert.Equal(t, 1, rep.ProcessingStats.RegionsChecked)
	assert.Equal(t, 1, rep.ProcessingStats.ResourcesFound)
	assert.InDelta(t, 2.35, rep.ProcessingStats.ProcessingTimeSeconds, 0.001)
}

func TestAssemble_CarriesCostModelAndIdentity(t *testing.T) {
	model := costs.NewModel()
	model.TotalCost = decimal.NewFromFloat(99.99)
	model.ByService.Set("Amazon Elastic Compute Cloud - Compute", decimal.NewFromFloat(99.99))

	generatedAt := time.Date(2025, time.March, 7, 8, 30, 0, 0, time.UTC)
	rep := Assemble("cost-report-2025-03-07", "123456789012",
		generatedAt, model, nil, nil, time.Second)

	assert.Equal(t, "2025-03-07T08:30:00Z", rep.Timestamp)
	assert.Equal(t, "cost-report-2025-03-07", rep.ExecutionID)
	assert.Equal(t, "123456789012", rep.AccountID)
	assert.True(t, rep.TotalCost.Equal(decimal.NewFromFloat(99.99)))
	assert.Same(t, model.ByService, rep.CostByService)
	assert.Same(t, model.Breakdown, rep.CostBreakdown)
	assert.False(t, rep.EmailSent, "delivery outcome is stamped later")
}

func TestAssemble_EmptyScan(t *testing.T) {
	rep := Assemble("cost-report-2025-03-07", "",
		time.Now(), costs.NewModel(), map[string][]aws.Resource{}, nil, 0)

	assert.Empty(t, rep.DetailedResources)
	assert.Equal(t, 0, rep.ProcessingStats.RegionsChecked)
	assert.Equal(t, 0, rep.ProcessingStats.ResourcesFound)
}
