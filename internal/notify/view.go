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

package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/costbeacon/costbeacon/internal/costs"
	"github.com/costbeacon/costbeacon/internal/report"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

// Usage lines cheaper than this are noise and are not rendered.
var displayFloor = decimal.NewFromFloat(0.01)

// reportView is the template input: everything preformatted so the
// HTML and text templates stay purely structural. Both renderers are
// deterministic functions of the Report; services and usage lines are
// sorted by descending cost, regions by name.
type reportView struct {
	Timestamp           string
	TotalCost           string
	TotalCostClass      string
	Services            []serviceView
	Regions             []regionView
	TotalResources      int
	RegionsScanned      int
	ServicesWithCharges int
	UsageTypeCount      int
}

type serviceView struct {
	Name      string
	Cost      string
	CostClass string
	Percent   string
	Lines     []usageLineView
}

type usageLineView struct {
	Label     string
	Cost      string
	CostClass string
	Details   string
	Percent   string
}

type regionView struct {
	Name     string
	Count    int
	Services []regionServiceView
}

type regionServiceView struct {
	Name      string
	Count     int
	Resources []resourceView

	// Overflow is how many resources beyond the text-body cap exist.
	Overflow int
}

type resourceView struct {
	Type    string
	ID      string
	State   string
	Details string
}

// textResourceCap limits how many resources the plain-text body lists per
// service per region.
const textResourceCap = 3

// buildView flattens a Report into the template input.
func buildView(rep *report.Report) reportView {
	view := reportView{
		Timestamp:           rep.Timestamp,
		TotalCost:           rep.TotalCost.StringFixed(2),
		TotalCostClass:      costClass(rep.TotalCost, 100, 10),
		TotalResources:      len(rep.DetailedResources),
		RegionsScanned:      len(rep.ResourcesByRegion),
		ServicesWithCharges: rep.CostByService.Len(),
		UsageTypeCount:      rep.CostBreakdown.Len(),
		Services:            buildServiceViews(rep),
		Regions:             buildRegionViews(rep.ResourcesByRegion),
	}
	return view
}

func buildServiceViews(rep *report.Report) []serviceView {
	var views []serviceView
	for _, service := range rep.CostByService.SortedByCostDesc() {
		cost, _ := rep.CostByService.Get(service)
		views = append(views, serviceView{
			Name:      service,
			Cost:      cost.StringFixed(2),
			CostClass: costClass(cost, 50, 5),
			Percent:   percent(cost, rep.TotalCost),
			Lines:     buildUsageLines(rep.CostBreakdown, service, cost),
		})
	}
	return views
}

func buildUsageLines(breakdown *costs.Breakdown, service string, serviceCost decimal.Decimal) []usageLineView {
	var lines []usageLineView
	for _, entry := range breakdown.EntriesByCostDesc(service) {
		if !entry.Cost.GreaterThan(displayFloor) {
			continue
		}
		lines = append(lines, usageLineView{
			Label:     entry.Label,
			Cost:      entry.Cost.StringFixed(2),
			CostClass: costClass(entry.Cost, 20, 2),
			Details:   usageDetails(entry),
			Percent:   percent(entry.Cost, serviceCost),
		})
	}
	return lines
}

func buildRegionViews(byRegion map[string][]aws.Resource) []regionView {
	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var views []regionView
	for _, region := range regions {
		resources := byRegion[region]
		views = append(views, regionView{
			Name:     strings.ToUpper(region),
			Count:    len(resources),
			Services: groupByService(resources),
		})
	}
	return views
}

// groupByService groups a region's resources by service, keeping the
// order services first appear in the listing.
func groupByService(resources []aws.Resource) []regionServiceView {
	var order []string
	grouped := make(map[string][]aws.Resource)
	for _, resource := range resources {
		if _, ok := grouped[resource.Service]; !ok {
			order = append(order, resource.Service)
		}
		grouped[resource.Service] = append(grouped[resource.Service], resource)
	}

	var views []regionServiceView
	for _, service := range order {
		group := grouped[service]
		view := regionServiceView{
			Name:  service,
			Count: len(group),
		}
		for _, resource := range group {
			view.Resources = append(view.Resources, resourceView{
				Type:    orNA(resource.ResourceType),
				ID:      orNA(resource.ResourceID),
				State:   orNA(resource.State),
				Details: attributeSummary(resource.Attributes),
			})
		}
		if len(group) > textResourceCap {
			view.Overflow = len(group) - textResourceCap
		}
		views = append(views, view)
	}
	return views
}

// usageDetails renders "$rate per Unit x quantity Unit" for lines with a
// meaningful rate, empty otherwise.
func usageDetails(entry costs.BreakdownEntry) string {
	if !entry.Quantity.IsPositive() || !entry.RatePerUnit.IsPositive() {
		return ""
	}
	return fmt.Sprintf("$%s per %s x %s %s",
		entry.RatePerUnit.StringFixed(3),
		entry.Unit,
		formatQuantity(entry.Quantity),
		entry.Unit)
}

// formatQuantity scales decimal places to magnitude: thousands get comma
// grouping and no decimals, small fractions keep 3 places.
func formatQuantity(quantity decimal.Decimal) string {
	switch {
	case quantity.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return groupThousands(quantity.Round(0).String())
	case quantity.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return quantity.StringFixed(1)
	default:
		return quantity.StringFixed(3)
	}
}

// groupThousands inserts comma separators into a non-negative integer
// string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// costClass buckets a cost into the high/medium/low display tiers.
func costClass(cost decimal.Decimal, high, medium int64) string {
	switch {
	case cost.GreaterThan(decimal.NewFromInt(high)):
		return "cost-high"
	case cost.GreaterThan(decimal.NewFromInt(medium)):
		return "cost-medium"
	default:
		return "cost-low"
	}
}

// percent formats part/whole as a one-decimal percentage, "0.0" for a
// zero whole.
func percent(part, whole decimal.Decimal) string {
	if !whole.IsPositive() {
		return "0.0"
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(whole, 1).StringFixed(1)
}

// attributeSummary joins up to three attributes as "key: value" pairs in
// key order.
func attributeSummary(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		parts = append(parts, key+": "+attributes[key])
	}
	summary := strings.Join(parts[:min(3, len(parts))], ", ")
	if len(parts) > 3 {
		summary += "..."
	}
	return summary
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
