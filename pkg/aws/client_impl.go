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
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// RealClient is a production implementation of the Client interface that
// makes real calls to AWS APIs using the AWS SDK v2.
//
// This implementation handles:
//   - Credential management using the AWS SDK default credential chain
//   - Lazy construction and caching of per-concern sub-clients
//   - Region-aware API calls (inventory clients cached per region)
//
// For testing, use MockClient instead.
type RealClient struct {
	cfg    ClientConfig
	awsCfg awssdk.Config

	mu               sync.Mutex
	billingClient    *RealBillingClient
	inventoryClients map[string]*RealInventoryClient
	globalClient     *RealGlobalClient
	storageClient    *RealStorageClient
	emailClient      *RealEmailClient
}

// NewRealClient creates a new RealClient with the specified configuration.
// The client uses the AWS SDK default credential chain for authentication:
// environment variables, the shared credentials file, then the execution
// role when running inside Lambda.
func NewRealClient(ctx context.Context, cfg ClientConfig) (*RealClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.DefaultRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &RealClient{
		cfg:              cfg,
		awsCfg:           awsCfg,
		inventoryClients: make(map[string]*RealInventoryClient),
	}, nil
}

// Billing returns the shared Cost Explorer client.
func (c *RealClient) Billing(_ context.Context) (BillingClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.billingClient == nil {
		c.billingClient = NewRealBillingClient(c.awsCfg)
	}
	return c.billingClient, nil
}

// Inventory returns an InventoryClient scoped to the given region.
// Clients are cached per region; the cache is safe for use from the
// concurrent region-scan workers.
func (c *RealClient) Inventory(_ context.Context, region string) (InventoryClient, error) {
	if region == "" {
		return nil, fmt.Errorf("inventory region must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.inventoryClients[region]; ok {
		return client, nil
	}

	client := NewRealInventoryClient(c.awsCfg, region)
	c.inventoryClients[region] = client
	return client, nil
}

// Global returns the shared client for account-wide resource kinds.
func (c *RealClient) Global(_ context.Context) (GlobalClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.globalClient == nil {
		c.globalClient = NewRealGlobalClient(c.awsCfg)
	}
	return c.globalClient, nil
}

// Storage returns the shared S3 client for the idempotency ledger.
func (c *RealClient) Storage(_ context.Context) (StorageClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storageClient == nil {
		c.storageClient = NewRealStorageClient(c.awsCfg)
	}
	return c.storageClient, nil
}

// Email returns the shared SES client, bound to the configured SES region.
func (c *RealClient) Email(_ context.Context) (EmailClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emailClient == nil {
		c.emailClient = NewRealEmailClient(c.awsCfg, c.cfg.SESRegion)
	}
	return c.emailClient, nil
}

// Regions returns the names of all regions enabled for the account,
// via a single EC2 DescribeRegions call against the default region.
func (c *RealClient) Regions(ctx context.Context) ([]string, error) {
	client := ec2.NewFromConfig(c.awsCfg)
	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, region := range out.Regions {
		if region.RegionName != nil {
			regions = append(regions, *region.RegionName)
		}
	}
	return regions, nil
}

// CallerIdentity returns the account ID the job's credentials belong to.
func (c *RealClient) CallerIdentity(ctx context.Context) (string, error) {
	client := sts.NewFromConfig(c.awsCfg)
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("caller identity response has no account")
	}
	return *out.Account, nil
}

// regionConfig returns a copy of the base SDK config rebound to a region.
func regionConfig(base awssdk.Config, region string) awssdk.Config {
	cfg := base.Copy()
	cfg.Region = region
	return cfg
}

// instanceStateFilter limits EC2 instance listings to the states that can
// still accrue charges.
var instanceStateFilter = ec2types.Filter{
	Name:   awssdk.String("instance-state-name"),
	Values: []string{"running", "stopped"},
}
