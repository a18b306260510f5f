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

// Package scanner inventories the resources behind the charged services:
// per-region scans dispatched across all enabled regions by a bounded
// worker pool, plus a sequential pass over the account-wide resource
// kinds.
package scanner

import (
	"context"
	"strings"

	"github.com/go-logr/logr"

	"github.com/costbeacon/costbeacon/pkg/aws"
)

// ChargedServices is the set of billing service names that appeared with
// positive cost. It gates which inventory queries run.
type ChargedServices []string

// AnyMatch reports whether any charged service name contains any of the
// given fragments. Billing service names are long-form ("Amazon Elastic
// Compute Cloud - Compute"), so category selection is by substring.
func (c ChargedServices) AnyMatch(fragments ...string) bool {
	for _, service := range c {
		for _, fragment := range fragments {
			if strings.Contains(service, fragment) {
				return true
			}
		}
	}
	return false
}

// RegionScanner runs the read-only inventory queries for one region.
// It is stateless and safe for concurrent use across regions.
type RegionScanner struct {
	client aws.Client
	log    logr.Logger
}

// NewRegionScanner creates a RegionScanner over the given client.
func NewRegionScanner(client aws.Client, log logr.Logger) *RegionScanner {
	return &RegionScanner{
		client: client,
		log:    log.WithName("region-scan"),
	}
}

// Scan returns every resource found in the region for the charged-service
// categories. Each per-service sub-query catches its own error and
// contributes nothing on failure, so one failing service cannot suppress
// the resources found for its siblings.
func (s *RegionScanner) Scan(ctx context.Context, region string, charged ChargedServices) []aws.Resource {
	inventory, err := s.client.Inventory(ctx, region)
	if err != nil {
		s.log.Error(err, "failed to create inventory client", "region", region)
		return nil
	}

	log := s.log.WithValues("region", region)
	var resources []aws.Resource

	if charged.AnyMatch("Elastic Compute Cloud", "EC2") {
		resources = appendListing(ctx, log, resources, "EC2 instances", inventory.Instances)
	}

	if charged.AnyMatch("Relational Database Service", "RDS") {
		resources = appendListing(ctx, log, resources, "RDS instances", inventory.DBInstances)
	}

	if charged.AnyMatch("Elastic Block Store", "EBS") {
		resources = appendListing(ctx, log, resources, "EBS volumes", inventory.Volumes)
	}

	if charged.AnyMatch("Elastic Load Balancing", "ELB") {
		resources = appendListing(ctx, log, resources, "load balancers", inventory.LoadBalancers)
		resources = appendListing(ctx, log, resources, "classic load balancers", inventory.ClassicLoadBalancers)
	}

	if charged.AnyMatch("Virtual Private Cloud", "VPC") {
		resources = appendListing(ctx, log, resources, "NAT gateways", inventory.NATGateways)
		resources = appendListing(ctx, log, resources, "Elastic IPs", inventory.ElasticIPs)
		resources = appendListing(ctx, log, resources, "VPC endpoints", inventory.VPCEndpoints)
	}

	if charged.AnyMatch("ElastiCache") {
		resources = appendListing(ctx, log, resources, "cache clusters", inventory.CacheClusters)
	}

	if charged.AnyMatch("Redshift") {
		resources = appendListing(ctx, log, resources, "Redshift clusters", inventory.WarehouseClusters)
	}

	if charged.AnyMatch("Lambda") {
		resources = appendListing(ctx, log, resources, "Lambda functions", inventory.Functions)
	}

	return resources
}

// appendListing runs one inventory listing and appends its results,
// logging and swallowing any error.
func appendListing(
	ctx context.Context,
	log logr.Logger,
	resources []aws.Resource,
	what string,
	list func(context.Context) ([]aws.Resource, error),
) []aws.Resource {
	found, err := list(ctx)
	if err != nil {
		log.Error(err, "inventory listing failed", "listing", what)
		return resources
	}
	return append(resources, found...)
}
