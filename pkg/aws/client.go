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
	"time"
)

// Client is the main interface for interacting with AWS services.
// It hands out narrow per-concern sub-clients so that each pipeline stage
// depends only on the API surface it actually uses.
type Client interface {
	// Billing returns a BillingClient for Cost Explorer queries.
	// Cost Explorer is a single-endpoint API and is not region-scoped.
	Billing(ctx context.Context) (BillingClient, error)

	// Inventory returns an InventoryClient scoped to the given region.
	// Clients are cached per region.
	Inventory(ctx context.Context, region string) (InventoryClient, error)

	// Global returns a GlobalClient for account-wide resource kinds
	// (CloudFront, Route 53, WAF).
	Global(ctx context.Context) (GlobalClient, error)

	// Storage returns a StorageClient for the idempotency ledger bucket.
	Storage(ctx context.Context) (StorageClient, error)

	// Email returns an EmailClient bound to the configured SES region.
	Email(ctx context.Context) (EmailClient, error)

	// Regions returns the names of all regions enabled for the account.
	Regions(ctx context.Context) ([]string, error)

	// CallerIdentity returns the account ID the job is running as.
	CallerIdentity(ctx context.Context) (string, error)
}

// BillingClient provides access to the Cost Explorer aggregation queries
// the report is built from.
type BillingClient interface {
	// CostByService returns per-service cost totals over [start, end),
	// grouped by the SERVICE dimension with MONTHLY granularity.
	CostByService(ctx context.Context, start, end time.Time) ([]ServiceCost, error)

	// CostByUsageType returns per-(service, usage-type) cost and usage
	// quantity over [start, end), grouped by the SERVICE and USAGE_TYPE
	// dimensions with MONTHLY granularity.
	CostByUsageType(ctx context.Context, start, end time.Time) ([]UsageCost, error)
}

// InventoryClient provides the read-only per-region resource listings.
// Every method returns flat Resource records carrying the service name,
// resource type, identifier, and region; anything service-specific goes
// into the record's Attributes.
type InventoryClient interface {
	// Instances returns EC2 instances in the running or stopped state.
	Instances(ctx context.Context) ([]Resource, error)

	// DBInstances returns RDS database instances.
	DBInstances(ctx context.Context) ([]Resource, error)

	// Volumes returns EBS volumes.
	Volumes(ctx context.Context) ([]Resource, error)

	// LoadBalancers returns application and network load balancers.
	LoadBalancers(ctx context.Context) ([]Resource, error)

	// ClassicLoadBalancers returns classic (v1) load balancers.
	ClassicLoadBalancers(ctx context.Context) ([]Resource, error)

	// NATGateways returns NAT gateways in the available or pending state.
	NATGateways(ctx context.Context) ([]Resource, error)

	// ElasticIPs returns allocated Elastic IP addresses.
	ElasticIPs(ctx context.Context) ([]Resource, error)

	// VPCEndpoints returns VPC endpoints.
	VPCEndpoints(ctx context.Context) ([]Resource, error)

	// CacheClusters returns ElastiCache clusters.
	CacheClusters(ctx context.Context) ([]Resource, error)

	// WarehouseClusters returns Redshift clusters.
	WarehouseClusters(ctx context.Context) ([]Resource, error)

	// Functions returns Lambda functions.
	Functions(ctx context.Context) ([]Resource, error)
}

// GlobalClient provides listings for resource kinds that are account-wide
// rather than region-scoped. Records are reported under the "global"
// pseudo-region.
type GlobalClient interface {
	// Distributions returns CloudFront distributions.
	Distributions(ctx context.Context) ([]Resource, error)

	// HostedZones returns Route 53 hosted zones.
	HostedZones(ctx context.Context) ([]Resource, error)

	// WebACLs returns WAFv2 web ACLs (REGIONAL scope, listed via
	// us-east-1).
	WebACLs(ctx context.Context) ([]Resource, error)
}

// StorageClient provides the durable key-value operations backing the
// idempotency ledger.
type StorageClient interface {
	// Exists reports whether the object exists. A NotFound response is
	// (false, nil); any other error is returned to the caller.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// Put writes an object with the given content type.
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// EmailClient sends a single rendered report to one recipient.
type EmailClient interface {
	// Send delivers the message and returns the provider message ID.
	Send(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error)
}

// ClientConfig configures AWS client creation.
type ClientConfig struct {
	// DefaultRegion is the region for non-regional API calls
	// (Cost Explorer, DescribeRegions, STS, S3).
	DefaultRegion string

	// SESRegion is the region the EmailClient is created in.
	SESRegion string
}

// NewClient creates a new AWS client using the SDK default credential
// chain. For production use this creates a RealClient; tests use
// MockClient instead.
func NewClient(ctx context.Context, cfg ClientConfig) (Client, error) {
	return NewRealClient(ctx, cfg)
}
