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

// Package costs queries the billing API for the trailing cost window and
// folds the results into a normalized cost model.
package costs

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/costbeacon/costbeacon/internal/usage"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

// Aggregator issues the two grouped Cost Explorer queries and builds a
// Model from the results.
type Aggregator struct {
	billing    aws.BillingClient
	log        logr.Logger
	windowDays int

	// now is swappable for deterministic window bounds in tests.
	now func() time.Time
}

// NewAggregator creates an Aggregator over the given billing client with
// a windowDays lookback.
func NewAggregator(billing aws.BillingClient, log logr.Logger, windowDays int) *Aggregator {
	return &Aggregator{
		billing:    billing,
		log:        log.WithName("costs"),
		windowDays: windowDays,
		now:        time.Now,
	}
}

// Fetch queries costs over [today - windowDays, today] and returns the
// folded model. It never fails: a billing-API error is logged and yields
// an empty model, so a billing outage degrades the report instead of
// blocking the resource inventory.
func (a *Aggregator) Fetch(ctx context.Context) *Model {
	end := a.now()
	start := end.AddDate(0, 0, -a.windowDays)

	serviceCosts, err := a.billing.CostByService(ctx, start, end)
	if err != nil {
		a.log.Error(err, "cost-by-service query failed, continuing with empty cost model")
		return NewModel()
	}

	usageCosts, err := a.billing.CostByUsageType(ctx, start, end)
	if err != nil {
		a.log.Error(err, "cost-by-usage-type query failed, continuing with empty cost model")
		return NewModel()
	}

	model := fold(serviceCosts, usageCosts)
	a.log.Info("fetched cost data",
		"total_cost", model.TotalCost.String(),
		"charged_services", model.ByService.Len(),
		"breakdown_entries", model.Breakdown.Len())
	return model
}

// fold builds a Model from raw query results. Entries with zero or
// negative cost are dropped: credits and refunds must not appear in the
// report, and must not reduce the total.
func fold(serviceCosts []aws.ServiceCost, usageCosts []aws.UsageCost) *Model {
	model := NewModel()

	total := decimal.Zero
	for _, sc := range serviceCosts {
		if !sc.Amount.IsPositive() {
			continue
		}
		model.ByService.Set(sc.Service, sc.Amount)
		total = total.Add(sc.Amount)
	}
	model.TotalCost = total.Round(2)

	for _, uc := range usageCosts {
		if !uc.Amount.IsPositive() {
			continue
		}
		label, unit := usage.Classify(uc.UsageType, uc.Service)
		rate := decimal.Zero
		if uc.Quantity.IsPositive() {
			rate = uc.Amount.DivRound(uc.Quantity, 6)
		}
		model.Breakdown.Set(BreakdownEntry{
			Service:     uc.Service,
			Label:       label,
			Cost:        uc.Amount,
			Quantity:    uc.Quantity,
			RawCode:     uc.UsageType,
			RatePerUnit: rate,
			Unit:        unit,
		})
	}

	return model
}
