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
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// Model is the normalized 30-day cost picture: total, per-service costs,
// and the per-(service, usage label) breakdown. All iteration is in
// insertion order; renderers apply their own explicit sorts.
type Model struct {
	// TotalCost is the sum of positive per-service costs, rounded to
	// 2 decimals.
	TotalCost decimal.Decimal

	// ByService maps service name to its positive cost.
	ByService *ServiceCosts

	// Breakdown holds the usage-type breakdown per service.
	Breakdown *Breakdown
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{
		TotalCost: decimal.Zero,
		ByService: NewServiceCosts(),
		Breakdown: NewBreakdown(),
	}
}

// ChargedServices returns the names of all services with positive cost,
// in insertion order.
func (m *Model) ChargedServices() []string {
	return m.ByService.Services()
}

// BreakdownEntry is one usage-type line within a service: a classified
// label with its cost, usage quantity, and derived per-unit rate.
type BreakdownEntry struct {
	Service     string          `json:"-"`
	Label       string          `json:"-"`
	Cost        decimal.Decimal `json:"cost"`
	Quantity    decimal.Decimal `json:"usage_quantity"`
	RawCode     string          `json:"usage_type_raw"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	Unit        string          `json:"unit"`
}

// ServiceCosts is a mapping from service name to cost that preserves
// insertion order, so that serialization and tests are deterministic
// without relying on map iteration order.
type ServiceCosts struct {
	order []string
	costs map[string]decimal.Decimal
}

// NewServiceCosts returns an empty ServiceCosts.
func NewServiceCosts() *ServiceCosts {
	return &ServiceCosts{costs: make(map[string]decimal.Decimal)}
}

// Set stores the cost for a service. A repeated service keeps its original
// position.
func (s *ServiceCosts) Set(service string, cost decimal.Decimal) {
	if _, ok := s.costs[service]; !ok {
		s.order = append(s.order, service)
	}
	s.costs[service] = cost
}

// Get returns the cost for a service.
func (s *ServiceCosts) Get(service string) (decimal.Decimal, bool) {
	cost, ok := s.costs[service]
	return cost, ok
}

// Services returns the service names in insertion order.
func (s *ServiceCosts) Services() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of services.
func (s *ServiceCosts) Len() int {
	return len(s.order)
}

// Sum returns the sum of all stored costs.
func (s *ServiceCosts) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, cost := range s.costs {
		total = total.Add(cost)
	}
	return total
}

// SortedByCostDesc returns the service names sorted by descending cost.
// Ties keep insertion order.
func (s *ServiceCosts) SortedByCostDesc() []string {
	out := s.Services()
	sort.SliceStable(out, func(i, j int) bool {
		return s.costs[out[i]].GreaterThan(s.costs[out[j]])
	})
	return out
}

// MarshalJSON serializes the mapping as a JSON object in insertion order.
func (s *ServiceCosts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, service := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(service)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		cost, err := json.Marshal(s.costs[service])
		if err != nil {
			return nil, err
		}
		buf.Write(cost)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Breakdown is the per-service usage-type breakdown. Both the service
// level and the label level preserve insertion order. Two raw codes that
// classify to the same label within one service collapse last-write-wins.
type Breakdown struct {
	order    []string
	services map[string]*serviceBreakdown
}

type serviceBreakdown struct {
	order   []string
	entries map[string]BreakdownEntry
}

// NewBreakdown returns an empty Breakdown.
func NewBreakdown() *Breakdown {
	return &Breakdown{services: make(map[string]*serviceBreakdown)}
}

// Set stores an entry under (entry.Service, entry.Label), overwriting any
// earlier entry with the same key. The overwritten entry keeps its
// original position.
func (b *Breakdown) Set(entry BreakdownEntry) {
	sb, ok := b.services[entry.Service]
	if !ok {
		sb = &serviceBreakdown{entries: make(map[string]BreakdownEntry)}
		b.services[entry.Service] = sb
		b.order = append(b.order, entry.Service)
	}
	if _, ok := sb.entries[entry.Label]; !ok {
		sb.order = append(sb.order, entry.Label)
	}
	sb.entries[entry.Label] = entry
}

// Services returns the service names in insertion order.
func (b *Breakdown) Services() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Entries returns a service's breakdown entries in insertion order.
func (b *Breakdown) Entries(service string) []BreakdownEntry {
	sb, ok := b.services[service]
	if !ok {
		return nil
	}
	out := make([]BreakdownEntry, 0, len(sb.order))
	for _, label := range sb.order {
		out = append(out, sb.entries[label])
	}
	return out
}

// EntriesByCostDesc returns a service's breakdown entries sorted by
// descending cost. Ties keep insertion order.
func (b *Breakdown) EntriesByCostDesc(service string) []BreakdownEntry {
	out := b.Entries(service)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Cost.GreaterThan(out[j].Cost)
	})
	return out
}

// Len returns the total number of entries across all services.
func (b *Breakdown) Len() int {
	count := 0
	for _, sb := range b.services {
		count += len(sb.order)
	}
	return count
}

// MarshalJSON serializes the breakdown as nested JSON objects in insertion
// order, keyed by service then label.
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, service := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(service)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteByte('{')
		sb := b.services[service]
		for j, label := range sb.order {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(label)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			entry, err := json.Marshal(sb.entries[label])
			if err != nil {
				return nil, err
			}
			buf.Write(entry)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
