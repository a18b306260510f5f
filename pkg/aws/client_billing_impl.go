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

package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"
)

// Cost Explorer metric and dimension identifiers.
const (
	metricBlendedCost   = "BlendedCost"
	metricUsageQuantity = "UsageQuantity"

	dimensionService   = "SERVICE"
	dimensionUsageType = "USAGE_TYPE"
)

// RealBillingClient is a production implementation of BillingClient backed
// by the Cost Explorer GetCostAndUsage API.
type RealBillingClient struct {
	client *costexplorer.Client
}

// NewRealBillingClient creates a Cost Explorer client from the base SDK
// configuration. Cost Explorer is a single-endpoint API, so no region
// rebinding is needed.
func NewRealBillingClient(cfg awssdk.Config) *RealBillingClient {
	return &RealBillingClient{client: costexplorer.NewFromConfig(cfg)}
}

// CostByService returns per-service cost totals over [start, end).
func (c *RealBillingClient) CostByService(ctx context.Context, start, end time.Time) ([]ServiceCost, error) {
	out, err := c.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(start, end),
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{metricBlendedCost},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String(dimensionService)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cost-by-service query failed: %w", err)
	}

	var costs []ServiceCost
	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) < 1 {
				continue
			}
			costs = append(costs, ServiceCost{
				Service: group.Keys[0],
				Amount:  metricAmount(group.Metrics, metricBlendedCost),
			})
		}
	}
	return costs, nil
}

// CostByUsageType returns per-(service, usage-type) cost and usage quantity
// over [start, end).
func (c *RealBillingClient) CostByUsageType(ctx context.Context, start, end time.Time) ([]UsageCost, error) {
	out, err := c.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(start, end),
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{metricBlendedCost, metricUsageQuantity},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String(dimensionService)},
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String(dimensionUsageType)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cost-by-usage-type query failed: %w", err)
	}

	var costs []UsageCost
	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) < 2 {
				continue
			}
			costs = append(costs, UsageCost{
				Service:   group.Keys[0],
				UsageType: group.Keys[1],
				Amount:    metricAmount(group.Metrics, metricBlendedCost),
				Quantity:  metricAmount(group.Metrics, metricUsageQuantity),
			})
		}
	}
	return costs, nil
}

// dateInterval formats a [start, end) window the way Cost Explorer expects.
func dateInterval(start, end time.Time) *cetypes.DateInterval {
	return &cetypes.DateInterval{
		Start: awssdk.String(start.Format("2006-01-02")),
		End:   awssdk.String(end.Format("2006-01-02")),
	}
}

// metricAmount extracts a decimal metric value from a Cost Explorer group.
// Missing or malformed amounts contribute zero rather than failing the
// whole query.
func metricAmount(metrics map[string]cetypes.MetricValue, name string) decimal.Decimal {
	metric, ok := metrics[name]
	if !ok || metric.Amount == nil {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(*metric.Amount)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
