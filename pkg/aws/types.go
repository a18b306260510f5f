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

// Package aws provides abstractions for interacting with AWS services.
//
// This file contains pure data structure definitions with no logic.

package aws

import (
	"github.com/shopspring/decimal"
)

// Short service names stamped onto Resource records. These are the names
// the report groups by, not the long-form billing service names.
const (
	ServiceEC2         = "EC2"
	ServiceRDS         = "RDS"
	ServiceEBS         = "EBS"
	ServiceELB         = "ELB"
	ServiceVPC         = "VPC"
	ServiceElastiCache = "ElastiCache"
	ServiceRedshift    = "Redshift"
	ServiceLambda      = "Lambda"
	ServiceCloudFront  = "CloudFront"
	ServiceRoute53     = "Route53"
	ServiceWAF         = "WAF"
)

// GlobalRegion is the pseudo-region key under which account-wide resources
// (CloudFront, Route 53, WAF) are reported.
const GlobalRegion = "global"

// ServiceCost is one group from the service-level Cost Explorer query.
type ServiceCost struct {
	// Service is the long-form billing service name
	// (e.g., "Amazon Elastic Compute Cloud - Compute").
	Service string

	// Amount is the cost over the query window, in account currency.
	Amount decimal.Decimal
}

// UsageCost is one group from the (service, usage-type) Cost Explorer query.
type UsageCost struct {
	// Service is the long-form billing service name.
	Service string

	// UsageType is the raw vendor usage-type code
	// (e.g., "USE1-BoxUsage:m5.large").
	UsageType string

	// Amount is the cost over the query window.
	Amount decimal.Decimal

	// Quantity is the usage quantity over the query window, in whatever
	// unit the usage type is metered in.
	Quantity decimal.Decimal
}

// Resource is a single inventoried resource. ResourceID is service-scoped:
// it is unique within one (Service, Region) pair but not across services.
type Resource struct {
	// Service is the short service name (e.g., ServiceEC2).
	Service string `json:"service"`

	// ResourceType is a human-readable kind (e.g., "Instance", "Volume").
	ResourceType string `json:"resource_type"`

	// ResourceID identifies the resource within its service and region.
	ResourceID string `json:"resource_id"`

	// Region is the region the resource lives in, or GlobalRegion.
	Region string `json:"region"`

	// State is the resource lifecycle state, where the service reports one.
	State string `json:"state,omitempty"`

	// Attributes holds service-specific detail (instance type, engine,
	// volume size, ...). Renderers sort keys before display.
	Attributes map[string]string `json:"attributes,omitempty"`
}
