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
	"strconv"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	wafv2types "github.com/aws/aws-sdk-go-v2/service/wafv2/types"
)

// RealGlobalClient is a production implementation of GlobalClient covering
// the account-wide resource kinds: CloudFront distributions, Route 53
// hosted zones, and WAFv2 web ACLs.
type RealGlobalClient struct {
	cfClient  *cloudfront.Client
	dnsClient *route53.Client
	wafClient *wafv2.Client
}

// NewRealGlobalClient creates the global-resource client from the base SDK
// configuration. WAFv2 listings use us-east-1 regardless of the base
// region; the REGIONAL scope is only routable there.
func NewRealGlobalClient(base awssdk.Config) *RealGlobalClient {
	return &RealGlobalClient{
		cfClient:  cloudfront.NewFromConfig(base),
		dnsClient: route53.NewFromConfig(base),
		wafClient: wafv2.NewFromConfig(regionConfig(base, "us-east-1")),
	}
}

// Distributions returns CloudFront distributions.
func (c *RealGlobalClient) Distributions(ctx context.Context) ([]Resource, error) {
	out, err := c.cfClient.ListDistributions(ctx, &cloudfront.ListDistributionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}

	var resources []Resource
	if out.DistributionList == nil {
		return resources, nil
	}
	for _, dist := range out.DistributionList.Items {
		resources = append(resources, Resource{
			Service:      ServiceCloudFront,
			ResourceType: "Distribution",
			ResourceID:   deref(dist.Id),
			Region:       GlobalRegion,
			State:        deref(dist.Status),
			Attributes: map[string]string{
				"domain_name": deref(dist.DomainName),
			},
		})
	}
	return resources, nil
}

// HostedZones returns Route 53 hosted zones.
func (c *RealGlobalClient) HostedZones(ctx context.Context) ([]Resource, error) {
	out, err := c.dnsClient.ListHostedZones(ctx, &route53.ListHostedZonesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list hosted zones: %w", err)
	}

	var resources []Resource
	for _, zone := range out.HostedZones {
		record := Resource{
			Service:      ServiceRoute53,
			ResourceType: "Hosted Zone",
			ResourceID:   deref(zone.Id),
			Region:       GlobalRegion,
			Attributes: map[string]string{
				"name": deref(zone.Name),
			},
		}
		if zone.ResourceRecordSetCount != nil {
			record.Attributes["record_count"] = strconv.FormatInt(*zone.ResourceRecordSetCount, 10)
		}
		resources = append(resources, record)
	}
	return resources, nil
}

// WebACLs returns WAFv2 web ACLs under the REGIONAL scope.
func (c *RealGlobalClient) WebACLs(ctx context.Context) ([]Resource, error) {
	out, err := c.wafClient.ListWebACLs(ctx, &wafv2.ListWebACLsInput{
		Scope: wafv2types.ScopeRegional,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list web ACLs: %w", err)
	}

	var resources []Resource
	for _, acl := range out.WebACLs {
		resources = append(resources, Resource{
			Service:      ServiceWAF,
			ResourceType: "Web ACL",
			ResourceID:   deref(acl.Name),
			Region:       GlobalRegion,
			State:        "active",
			Attributes: map[string]string{
				"arn": deref(acl.ARN),
			},
		})
	}
	return resources, nil
}
