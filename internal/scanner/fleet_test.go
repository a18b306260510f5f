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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbeacon/costbeacon/pkg/aws"
)

// stubRegions is a canned RegionInventory: fixed results per region, with
// optional regions that never answer.
type stubRegions struct {
	mu      sync.Mutex
	results map[string][]aws.Resource
	stuck   map[string]bool
	scanned []string
}

func (s *stubRegions) Scan(ctx context.Context, region string, _ ChargedServices) []aws.Resource {
	s.mu.Lock()
	s.scanned = append(s.scanned, region)
	stuck := s.stuck[region]
	result := s.results[region]
	s.mu.Unlock()

	if stuck {
		<-ctx.Done()
		return nil
	}
	return result
}

func TestFleetScan_GroupsByRegionAndOmitsEmpty(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1", "eu-west-1", "ap-southeast-2"}

	stub := &stubRegions{results: map[string][]aws.Resource{
		"us-east-1": {{Service: aws.ServiceEC2, ResourceID: "i-1", Region: "us-east-1"}},
		"eu-west-1": {
			{Service: aws.ServiceRDS, ResourceID: "db-1", Region: "eu-west-1"},
			{Service: aws.ServiceEBS, ResourceID: "vol-1", Region: "eu-west-1"},
		},
	}}

	fleet := NewFleetScanner(client, stub, logr.Discard(), 4, time.Second)
	byRegion, global := fleet.Scan(context.Background(), ChargedServices{"Amazon Elastic Compute Cloud - Compute"})

	assert.Empty(t, global)
	require.Len(t, byRegion, 2, "resource-less regions must be omitted")
	assert.Len(t, byRegion["us-east-1"], 1)
	assert.Len(t, byRegion["eu-west-1"], 2)
	assert.NotContains(t, byRegion, "ap-southeast-2")
	assert.ElementsMatch(t, client.RegionList, stub.scanned, "every region gets scanned")
}

// A region that never answers is abandoned at the deadline; the other
// regions' results still land.
func TestFleetScan_AbandonsStuckRegion(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1", "sa-east-1"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // unblocks the stuck stub goroutine at test end

	stub := &stubRegions{
		results: map[string][]aws.Resource{
			"us-east-1": {{Service: aws.ServiceEC2, ResourceID: "i-1"}},
		},
		stuck: map[string]bool{"sa-east-1": true},
	}

	fleet := NewFleetScanner(client, stub, logr.Discard(), 4, 50*time.Millisecond)

	start := time.Now()
	byRegion, _ := fleet.Scan(ctx, ChargedServices{"Amazon Elastic Compute Cloud - Compute"})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "scan must not wait on a stuck region")
	require.Len(t, byRegion, 1)
	assert.NotContains(t, byRegion, "sa-east-1")
	assert.Len(t, byRegion["us-east-1"], 1)
}

func TestFleetScan_WorkerCapBoundsParallelism(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"r1", "r2", "r3", "r4", "r5", "r6"}

	var mu sync.Mutex
	inFlight, peak := 0, 0
	counting := regionScanFunc(func(_ context.Context, _ string, _ ChargedServices) []aws.Resource {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	fleet := NewFleetScanner(client, counting, logr.Discard(), 2, time.Second)
	fleet.Scan(context.Background(), nil)

	assert.LessOrEqual(t, peak, 2, "no more than workers scans in flight")
}

type regionScanFunc func(context.Context, string, ChargedServices) []aws.Resource

func (f regionScanFunc) Scan(ctx context.Context, region string, charged ChargedServices) []aws.Resource {
	return f(ctx, region, charged)
}

func TestFleetScan_GlobalResourcesInjectedUnderGlobalKey(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}
	client.GlobalClientInstance.DistributionList = []aws.Resource{
		{Service: aws.ServiceCloudFront, ResourceID: "E123", Region: aws.GlobalRegion},
	}
	client.GlobalClientInstance.ZoneList = []aws.Resource{
		{Service: aws.ServiceRoute53, ResourceID: "Z456", Region: aws.GlobalRegion},
	}

	stub := &stubRegions{}
	fleet := NewFleetScanner(client, stub, logr.Discard(), 4, time.Second)
	byRegion, global := fleet.Scan(context.Background(), ChargedServices{"Amazon CloudFront", "Amazon Route 53"})

	require.Len(t, global, 2)
	assert.Equal(t, global, byRegion[aws.GlobalRegion])
	assert.Len(t, byRegion, 1)
}

func TestFleetScan_GlobalSkippedWhenNotCharged(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}
	client.GlobalClientInstance.DistributionList = []aws.Resource{
		{Service: aws.ServiceCloudFront, ResourceID: "E123"},
	}

	fleet := NewFleetScanner(client, &stubRegions{}, logr.Discard(), 4, time.Second)
	byRegion, global := fleet.Scan(context.Background(), ChargedServices{"Amazon Elastic Compute Cloud - Compute"})

	assert.Empty(t, global)
	assert.NotContains(t, byRegion, aws.GlobalRegion)
}

// One failing global kind leaves the others intact.
func TestFleetScan_GlobalKindErrorIsIsolated(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}
	client.GlobalClientInstance.DistributionsError = fmt.Errorf("access denied")
	client.GlobalClientInstance.ZoneList = []aws.Resource{
		{Service: aws.ServiceRoute53, ResourceID: "Z456"},
	}

	fleet := NewFleetScanner(client, &stubRegions{}, logr.Discard(), 4, time.Second)
	_, global := fleet.Scan(context.Background(), ChargedServices{"Amazon CloudFront", "Amazon Route 53"})

	require.Len(t, global, 1)
	assert.Equal(t, "Z456", global[0].ResourceID)
}

func TestFleetScan_RegionEnumerationFailureDegrades(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionsError = fmt.Errorf("ec2 unavailable")

	fleet := NewFleetScanner(client, &stubRegions{}, logr.Discard(), 4, time.Second)
	byRegion, global := fleet.Scan(context.Background(), ChargedServices{"Amazon Elastic Compute Cloud - Compute"})

	assert.Empty(t, byRegion)
	assert.Nil(t, global)
}
