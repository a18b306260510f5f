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

package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/costbeacon/costbeacon/pkg/aws"
)

// RegionInventory abstracts the per-region scan so the fleet scanner can
// be exercised with stub regions in tests.
type RegionInventory interface {
	Scan(ctx context.Context, region string, charged ChargedServices) []aws.Resource
}

// FleetScanner fans the region scan out across all enabled regions with
// bounded parallelism, then collects account-wide resources sequentially.
type FleetScanner struct {
	client  aws.Client
	regions RegionInventory
	log     logr.Logger
	workers int
	timeout time.Duration
}

// NewFleetScanner creates a FleetScanner. workers caps concurrent region
// scans; timeout is the per-region ceiling after which a region's result
// is abandoned.
func NewFleetScanner(
	client aws.Client,
	regions RegionInventory,
	log logr.Logger,
	workers int,
	timeout time.Duration,
) *FleetScanner {
	return &FleetScanner{
		client:  client,
		regions: regions,
		log:     log.WithName("fleet-scan"),
		workers: workers,
		timeout: timeout,
	}
}

// regionResult is one region's completed (or abandoned) scan.
type regionResult struct {
	region    string
	resources []aws.Resource
}

// Scan enumerates all enabled regions, scans them concurrently, and
// returns resources grouped by region plus the flat global-resource list.
// Regions that yield nothing are omitted from the map; a non-empty global
// list is additionally injected under the "global" pseudo-region key.
//
// No ordering is promised across regions. Workers only ever write their
// own result; the map is populated solely by the coordinating goroutine.
func (s *FleetScanner) Scan(ctx context.Context, charged ChargedServices) (map[string][]aws.Resource, []aws.Resource) {
	byRegion := make(map[string][]aws.Resource)

	regions, err := s.client.Regions(ctx)
	if err != nil {
		s.log.Error(err, "failed to enumerate regions, skipping regional scan")
		return byRegion, nil
	}

	s.log.Info("scanning regions",
		"regions", len(regions),
		"workers", s.workers,
		"per_region_timeout", s.timeout.String())

	results := make(chan regionResult, len(regions))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// The scan runs in its own goroutine so a stuck region can be
			// abandoned at the deadline without cancelling the in-flight
			// inventory calls; an orphaned call may still complete later
			// and its result is discarded.
			done := make(chan []aws.Resource, 1)
			go func() {
				done <- s.regions.Scan(ctx, region, charged)
			}()

			select {
			case resources := <-done:
				results <- regionResult{region: region, resources: resources}
			case <-time.After(s.timeout):
				s.log.Info("region scan timed out", "region", region)
				results <- regionResult{region: region}
			case <-ctx.Done():
				results <- regionResult{region: region}
			}
		}(region)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		if len(result.resources) == 0 {
			continue
		}
		byRegion[result.region] = result.resources
		s.log.V(1).Info("found resources",
			"region", result.region,
			"count", len(result.resources))
	}

	global := s.scanGlobal(ctx, charged)
	if len(global) > 0 {
		byRegion[aws.GlobalRegion] = global
	}

	total := lo.SumBy(lo.Values(byRegion), func(resources []aws.Resource) int {
		return len(resources)
	})
	s.log.Info("fleet scan completed",
		"regions_with_resources", len(byRegion),
		"resources", total)

	return byRegion, global
}

// scanGlobal collects the account-wide resource kinds for any charged
// global category. Each kind catches its own error and contributes
// nothing on failure; region results already gathered are never affected.
func (s *FleetScanner) scanGlobal(ctx context.Context, charged ChargedServices) []aws.Resource {
	if !charged.AnyMatch("CloudFront", "Route 53", "WAF") {
		return nil
	}

	global, err := s.client.Global(ctx)
	if err != nil {
		s.log.Error(err, "failed to create global client, skipping global resources")
		return nil
	}

	var resources []aws.Resource

	if charged.AnyMatch("CloudFront") {
		resources = appendListing(ctx, s.log, resources, "CloudFront distributions", global.Distributions)
	}
	if charged.AnyMatch("Route 53") {
		resources = appendListing(ctx, s.log, resources, "Route 53 hosted zones", global.HostedZones)
	}
	if charged.AnyMatch("WAF") {
		resources = appendListing(ctx, s.log, resources, "WAF web ACLs", global.WebACLs)
	}

	return resources
}
