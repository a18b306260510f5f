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

package costs

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbeacon/costbeacon/pkg/aws"
)

const ec2Service = "Amazon Elastic Compute Cloud - Compute"

func newAggregator(billing *aws.MockBillingClient) *Aggregator {
	return NewAggregator(billing, logr.Discard(), 30)
}

// Credits and refunds come back as zero or negative lines and must be
// excluded from both the per-service map and the total.
func TestFetch_DropsNonPositiveEntries(t *testing.T) {
	billing := aws.NewMockBillingClient()
	billing.ServiceCosts = []aws.ServiceCost{
		{Service: ec2Service, Amount: decimal.NewFromFloat(42.50)},
		{Service: "Amazon Simple Storage Service", Amount: decimal.NewFromFloat(-3.25)},
		{Service: "AWS Free Tier Thing", Amount: decimal.Zero},
	}

	model := newAggregator(billing).Fetch(context.Background())

	_, hasRefund := model.ByService.Get("Amazon Simple Storage Service")
	assert.False(t, hasRefund, "negative entry must not appear in by-service map")
	_, hasZero := model.ByService.Get("AWS Free Tier Thing")
	assert.False(t, hasZero, "zero entry must not appear in by-service map")
	assert.Equal(t, "42.5", model.TotalCost.String(), "refund must not reduce the total")
}

func TestFetch_TotalEqualsSumOfKeptEntries(t *testing.T) {
	billing := aws.NewMockBillingClient()
	billing.ServiceCosts = []aws.ServiceCost{
		{Service: ec2Service, Amount: decimal.NewFromFloat(10.111)},
		{Service: "Amazon Relational Database Service", Amount: decimal.NewFromFloat(5.222)},
		{Service: "Amazon CloudFront", Amount: decimal.NewFromFloat(-1.0)},
	}

	model := newAggregator(billing).Fetch(context.Background())

	require.Equal(t, 2, model.ByService.Len())
	assert.True(t, model.TotalCost.Equal(model.ByService.Sum().Round(2)),
		"total %s != sum %s", model.TotalCost, model.ByService.Sum())
}

func TestFetch_RatePerUnit(t *testing.T) {
	billing := aws.NewMockBillingClient()
	billing.UsageCosts = []aws.UsageCost{
		{
			Service:   ec2Service,
			UsageType: "USE1-BoxUsage:m5.large",
			Amount:    decimal.NewFromInt(10),
			Quantity:  decimal.NewFromInt(5),
		},
		{
			Service:   ec2Service,
			UsageType: "USE1-EBS:VolumeUsage.gp3",
			Amount:    decimal.NewFromInt(10),
			Quantity:  decimal.Zero,
		},
	}

	model := newAggregator(billing).Fetch(context.Background())

	entries := model.Breakdown.Entries(ec2Service)
	require.Len(t, entries, 2)
	assert.Equal(t, "EC2 Instance - m5.large", entries[0].Label)
	assert.True(t, entries[0].RatePerUnit.Equal(decimal.NewFromInt(2)),
		"rate = cost/quantity, got %s", entries[0].RatePerUnit)
	assert.True(t, entries[1].RatePerUnit.IsZero(),
		"zero quantity must yield zero rate, got %s", entries[1].RatePerUnit)
}

// Two raw codes classifying to the same label collapse last-write-wins.
func TestFetch_LastWriteWinsOnLabelCollision(t *testing.T) {
	billing := aws.NewMockBillingClient()
	billing.UsageCosts = []aws.UsageCost{
		{
			Service:   "Amazon Virtual Private Cloud",
			UsageType: "USE1-NatGateway-Hours",
			Amount:    decimal.NewFromInt(3),
			Quantity:  decimal.NewFromInt(720),
		},
		{
			Service:   "Amazon Virtual Private Cloud",
			UsageType: "USW2-NatGateway-Hours",
			Amount:    decimal.NewFromInt(7),
			Quantity:  decimal.NewFromInt(720),
		},
	}

	model := newAggregator(billing).Fetch(context.Background())

	entries := model.Breakdown.Entries("Amazon Virtual Private Cloud")
	require.Len(t, entries, 1, "same label must collapse to one entry")
	assert.Equal(t, "NAT Gateway Hours", entries[0].Label)
	assert.Equal(t, "USW2-NatGateway-Hours", entries[0].RawCode, "later code wins")
	assert.True(t, entries[0].Cost.Equal(decimal.NewFromInt(7)))
}

func TestFetch_BreakdownDropsNonPositiveCost(t *testing.T) {
	billing := aws.NewMockBillingClient()
	billing.UsageCosts = []aws.UsageCost{
		{Service: ec2Service, UsageType: "USE1-BoxUsage:t3.nano", Amount: decimal.NewFromFloat(-0.5), Quantity: decimal.NewFromInt(1)},
	}

	model := newAggregator(billing).Fetch(context.Background())
	assert.Empty(t, model.Breakdown.Services())
}

// Any billing-API error degrades to an empty model so the pipeline can
// continue; it must not propagate.
func TestFetch_DegradesToEmptyModelOnError(t *testing.T) {
	for name, configure := range map[string]func(*aws.MockBillingClient){
		"service query fails": func(b *aws.MockBillingClient) { b.ServiceError = fmt.Errorf("throttled") },
		"usage query fails":   func(b *aws.MockBillingClient) { b.UsageError = fmt.Errorf("throttled") },
	} {
		t.Run(name, func(t *testing.T) {
			billing := aws.NewMockBillingClient()
			billing.ServiceCosts = []aws.ServiceCost{{Service: ec2Service, Amount: decimal.NewFromInt(5)}}
			configure(billing)

			model := newAggregator(billing).Fetch(context.Background())

			assert.True(t, model.TotalCost.IsZero())
			assert.Equal(t, 0, model.ByService.Len())
			assert.Equal(t, 0, model.Breakdown.Len())
		})
	}
}
