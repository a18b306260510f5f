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
	"sync"
	"time"
)

// Inventory method names used as keys into MockInventoryClient maps.
const (
	MockInstances         = "Instances"
	MockDBInstances       = "DBInstances"
	MockVolumes           = "Volumes"
	MockLoadBalancers     = "LoadBalancers"
	MockClassicLBs        = "ClassicLoadBalancers"
	MockNATGateways       = "NATGateways"
	MockElasticIPs        = "ElasticIPs"
	MockVPCEndpoints      = "VPCEndpoints"
	MockCacheClusters     = "CacheClusters"
	MockWarehouseClusters = "WarehouseClusters"
	MockFunctions         = "Functions"
)

// MockClient is a mock implementation of the Client interface for testing.
// It provides configurable responses and tracks method calls.
type MockClient struct {
	mu sync.Mutex

	// BillingClientInstance is the mock billing client.
	BillingClientInstance *MockBillingClient

	// InventoryClients maps region to MockInventoryClient. Regions without
	// an entry get a fresh empty client.
	InventoryClients map[string]*MockInventoryClient

	// GlobalClientInstance is the mock global-resource client.
	GlobalClientInstance *MockGlobalClient

	// StorageClientInstance is the mock storage client.
	StorageClientInstance *MockStorageClient

	// EmailClientInstance is the mock email client.
	EmailClientInstance *MockEmailClient

	// RegionList is returned by Regions.
	RegionList []string

	// AccountID is returned by CallerIdentity.
	AccountID string

	// Errors can be set to simulate AWS API failures.
	RegionsError  error
	IdentityError error
}

// NewMockClient creates a new MockClient with initialized sub-clients.
func NewMockClient() *MockClient {
	return &MockClient{
		BillingClientInstance: NewMockBillingClient(),
		InventoryClients:      make(map[string]*MockInventoryClient),
		GlobalClientInstance:  NewMockGlobalClient(),
		StorageClientInstance: NewMockStorageClient(),
		EmailClientInstance:   NewMockEmailClient(),
		AccountID:             "123456789012",
	}
}

// Billing returns the mock billing client.
func (c *MockClient) Billing(_ context.Context) (BillingClient, error) {
	return c.BillingClientInstance, nil
}

// Inventory returns the mock inventory client for a region, creating an
// empty one on first use.
func (c *MockClient) Inventory(_ context.Context, region string) (InventoryClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.InventoryClients[region]; ok {
		return client, nil
	}
	client := NewMockInventoryClient()
	c.InventoryClients[region] = client
	return client, nil
}

// Global returns the mock global-resource client.
func (c *MockClient) Global(_ context.Context) (GlobalClient, error) {
	return c.GlobalClientInstance, nil
}

// Storage returns the mock storage client.
func (c *MockClient) Storage(_ context.Context) (StorageClient, error) {
	return c.StorageClientInstance, nil
}

// Email returns the mock email client.
func (c *MockClient) Email(_ context.Context) (EmailClient, error) {
	return c.EmailClientInstance, nil
}

// Regions returns the configured region list.
func (c *MockClient) Regions(_ context.Context) ([]string, error) {
	if c.RegionsError != nil {
		return nil, c.RegionsError
	}
	return c.RegionList, nil
}

// CallerIdentity returns the configured account ID.
func (c *MockClient) CallerIdentity(_ context.Context) (string, error) {
	if c.IdentityError != nil {
		return "", c.IdentityError
	}
	return c.AccountID, nil
}

// MockBillingClient is a configurable BillingClient for testing.
type MockBillingClient struct {
	mu sync.Mutex

	// ServiceCosts is returned by CostByService.
	ServiceCosts []ServiceCost

	// UsageCosts is returned by CostByUsageType.
	UsageCosts []UsageCost

	// ServiceError and UsageError simulate query failures.
	ServiceError error
	UsageError   error

	// Calls counts queries issued against this client.
	Calls int
}

// NewMockBillingClient creates an empty MockBillingClient.
func NewMockBillingClient() *MockBillingClient {
	return &MockBillingClient{}
}

// CostByService returns the configured service costs.
func (c *MockBillingClient) CostByService(_ context.Context, _, _ time.Time) ([]ServiceCost, error) {
	c.mu.Lock()
	c.Calls++
	c.mu.Unlock()
	if c.ServiceError != nil {
		return nil, c.ServiceError
	}
	return c.ServiceCosts, nil
}

// CostByUsageType returns the configured usage costs.
func (c *MockBillingClient) CostByUsageType(_ context.Context, _, _ time.Time) ([]UsageCost, error) {
	c.mu.Lock()
	c.Calls++
	c.mu.Unlock()
	if c.UsageError != nil {
		return nil, c.UsageError
	}
	return c.UsageCosts, nil
}

// MockInventoryClient is a configurable InventoryClient for testing.
// Listings and Errors are keyed by the Mock* method-name constants.
type MockInventoryClient struct {
	mu sync.Mutex

	// Listings maps method name to the resources it returns.
	Listings map[string][]Resource

	// Errors maps method name to a simulated failure.
	Errors map[string]error

	// CalledMethods records the order of inventory calls.
	CalledMethods []string

	// Delay, when set, is slept before each call returns. Used to
	// exercise scan timeouts.
	Delay time.Duration
}

// NewMockInventoryClient creates an empty MockInventoryClient.
func NewMockInventoryClient() *MockInventoryClient {
	return &MockInventoryClient{
		Listings: make(map[string][]Resource),
		Errors:   make(map[string]error),
	}
}

func (c *MockInventoryClient) list(ctx context.Context, method string) ([]Resource, error) {
	c.mu.Lock()
	c.CalledMethods = append(c.CalledMethods, method)
	delay := c.Delay
	err := c.Errors[method]
	listing := c.Listings[method]
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Instances returns the configured listing for MockInstances.
func (c *MockInventoryClient) Instances(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockInstances)
}

// DBInstances returns the configured listing for MockDBInstances.
func (c *MockInventoryClient) DBInstances(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockDBInstances)
}

// Volumes returns the configured listing for MockVolumes.
func (c *MockInventoryClient) Volumes(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockVolumes)
}

// LoadBalancers returns the configured listing for MockLoadBalancers.
func (c *MockInventoryClient) LoadBalancers(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockLoadBalancers)
}

// ClassicLoadBalancers returns the configured listing for MockClassicLBs.
func (c *MockInventoryClient) ClassicLoadBalancers(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockClassicLBs)
}

// NATGateways returns the configured listing for MockNATGateways.
func (c *MockInventoryClient) NATGateways(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockNATGateways)
}

// ElasticIPs returns the configured listing for MockElasticIPs.
func (c *MockInventoryClient) ElasticIPs(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockElasticIPs)
}

// VPCEndpoints returns the configured listing for MockVPCEndpoints.
func (c *MockInventoryClient) VPCEndpoints(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockVPCEndpoints)
}

// CacheClusters returns the configured listing for MockCacheClusters.
func (c *MockInventoryClient) CacheClusters(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockCacheClusters)
}

// WarehouseClusters returns the configured listing for MockWarehouseClusters.
func (c *MockInventoryClient) WarehouseClusters(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockWarehouseClusters)
}

// Functions returns the configured listing for MockFunctions.
func (c *MockInventoryClient) Functions(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, MockFunctions)
}

// MockGlobalClient is a configurable GlobalClient for testing.
type MockGlobalClient struct {
	// DistributionList, ZoneList, and ACLList are the configured listings.
	DistributionList []Resource
	ZoneList         []Resource
	ACLList          []Resource

	// Errors simulate per-kind failures.
	DistributionsError error
	ZonesError         error
	ACLsError          error
}

// NewMockGlobalClient creates an empty MockGlobalClient.
func NewMockGlobalClient() *MockGlobalClient {
	return &MockGlobalClient{}
}

// Distributions returns the configured distribution listing.
func (c *MockGlobalClient) Distributions(_ context.Context) ([]Resource, error) {
	if c.DistributionsError != nil {
		return nil, c.DistributionsError
	}
	return c.DistributionList, nil
}

// HostedZones returns the configured zone listing.
func (c *MockGlobalClient) HostedZones(_ context.Context) ([]Resource, error) {
	if c.ZonesError != nil {
		return nil, c.ZonesError
	}
	return c.ZoneList, nil
}

// WebACLs returns the configured ACL listing.
func (c *MockGlobalClient) WebACLs(_ context.Context) ([]Resource, error) {
	if c.ACLsError != nil {
		return nil, c.ACLsError
	}
	return c.ACLList, nil
}

// MockStorageClient is a configurable StorageClient for testing.
type MockStorageClient struct {
	mu sync.Mutex

	// Objects holds stored bodies keyed by "bucket/key". Exists consults
	// this map unless ExistsError is set.
	Objects map[string][]byte

	// ContentTypes records the content type of each Put, keyed like Objects.
	ContentTypes map[string]string

	// ExistsError and PutError simulate storage failures.
	ExistsError error
	PutError    error

	// ExistsCalls and PutCalls record the keys of each operation.
	ExistsCalls []string
	PutCalls    []string
}

// NewMockStorageClient creates an empty MockStorageClient.
func NewMockStorageClient() *MockStorageClient {
	return &MockStorageClient{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Exists reports whether Put previously stored the key.
func (c *MockStorageClient) Exists(_ context.Context, bucket, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExistsCalls = append(c.ExistsCalls, bucket+"/"+key)
	if c.ExistsError != nil {
		return false, c.ExistsError
	}
	_, ok := c.Objects[bucket+"/"+key]
	return ok, nil
}

// Put stores the object body in memory.
func (c *MockStorageClient) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PutCalls = append(c.PutCalls, bucket+"/"+key)
	if c.PutError != nil {
		return c.PutError
	}
	c.Objects[bucket+"/"+key] = body
	c.ContentTypes[bucket+"/"+key] = contentType
	return nil
}

// SentEmail records one delivered message for assertions.
type SentEmail struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// MockEmailClient is a configurable EmailClient for testing.
type MockEmailClient struct {
	mu sync.Mutex

	// Sent records every accepted message.
	Sent []SentEmail

	// SendError, when set, fails every send.
	SendError error

	// FailRecipients fails sends to specific addresses while letting
	// others through.
	FailRecipients map[string]error
}

// NewMockEmailClient creates an empty MockEmailClient.
func NewMockEmailClient() *MockEmailClient {
	return &MockEmailClient{
		FailRecipients: make(map[string]error),
	}
}

// Send records the message and returns a fixed message ID.
func (c *MockEmailClient) Send(_ context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendError != nil {
		return "", c.SendError
	}
	if err, ok := c.FailRecipients[to]; ok {
		return "", err
	}
	c.Sent = append(c.Sent, SentEmail{
		From:     from,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	return "mock-message-id", nil
}
