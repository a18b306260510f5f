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
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
)

// RealInventoryClient is a production implementation of InventoryClient.
// All listings are read-only Describe/List calls scoped to one region.
type RealInventoryClient struct {
	region      string
	ec2Client   *ec2.Client
	rdsClient   *rds.Client
	elbClient   *elb.Client
	elbv2Client *elbv2.Client
	cacheClient *elasticache.Client
	dwClient    *redshift.Client
	fnClient    *lambda.Client
}

// NewRealInventoryClient creates an inventory client for one region from
// the base SDK configuration.
func NewRealInventoryClient(base awssdk.Config, region string) *RealInventoryClient {
	cfg := regionConfig(base, region)
	return &RealInventoryClient{
		region:      region,
		ec2Client:   ec2.NewFromConfig(cfg),
		rdsClient:   rds.NewFromConfig(cfg),
		elbClient:   elb.NewFromConfig(cfg),
		elbv2Client: elbv2.NewFromConfig(cfg),
		cacheClient: elasticache.NewFromConfig(cfg),
		dwClient:    redshift.NewFromConfig(cfg),
		fnClient:    lambda.NewFromConfig(cfg),
	}
}

// Instances returns EC2 instances in the running or stopped state.
// Terminated instances no longer accrue charges and are excluded.
func (c *RealInventoryClient) Instances(ctx context.Context) ([]Resource, error) {
	out, err := c.ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{instanceStateFilter},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			record := Resource{
				Service:      ServiceEC2,
				ResourceType: "Instance",
				ResourceID:   deref(instance.InstanceId),
				Region:       c.region,
				Attributes: map[string]string{
					"instance_type": string(instance.InstanceType),
				},
			}
			if instance.State != nil {
				record.State = string(instance.State.Name)
			}
			if instance.LaunchTime != nil {
				record.Attributes["launch_time"] = instance.LaunchTime.UTC().Format("2006-01-02T15:04:05Z")
			}
			resources = append(resources, record)
		}
	}
	return resources, nil
}

// DBInstances returns RDS database instances.
func (c *RealInventoryClient) DBInstances(ctx context.Context) ([]Resource, error) {
	out, err := c.rdsClient.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe DB instances in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, db := range out.DBInstances {
		resources = append(resources, Resource{
			Service:      ServiceRDS,
			ResourceType: "DB Instance",
			ResourceID:   deref(db.DBInstanceIdentifier),
			Region:       c.region,
			State:        deref(db.DBInstanceStatus),
			Attributes: map[string]string{
				"instance_class": deref(db.DBInstanceClass),
				"engine":         deref(db.Engine),
			},
		})
	}
	return resources, nil
}

// Volumes returns EBS volumes.
func (c *RealInventoryClient) Volumes(ctx context.Context) ([]Resource, error) {
	out, err := c.ec2Client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe volumes in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, volume := range out.Volumes {
		record := Resource{
			Service:      ServiceEBS,
			ResourceType: "Volume",
			ResourceID:   deref(volume.VolumeId),
			Region:       c.region,
			State:        string(volume.State),
			Attributes: map[string]string{
				"volume_type": string(volume.VolumeType),
			},
		}
		if volume.Size != nil {
			record.Attributes["size_gb"] = strconv.FormatInt(int64(*volume.Size), 10)
		}
		resources = append(resources, record)
	}
	return resources, nil
}

// LoadBalancers returns application and network load balancers.
func (c *RealInventoryClient) LoadBalancers(ctx context.Context) ([]Resource, error) {
	out, err := c.elbv2Client.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe load balancers in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, lb := range out.LoadBalancers {
		record := Resource{
			Service:      ServiceELB,
			ResourceType: "Load Balancer",
			ResourceID:   deref(lb.LoadBalancerName),
			Region:       c.region,
			Attributes: map[string]string{
				"type":   string(lb.Type),
				"scheme": string(lb.Scheme),
			},
		}
		if lb.State != nil {
			record.State = string(lb.State.Code)
		}
		resources = append(resources, record)
	}
	return resources, nil
}

// ClassicLoadBalancers returns classic (v1) load balancers. Classic ELBs
// report no lifecycle state.
func (c *RealInventoryClient) ClassicLoadBalancers(ctx context.Context) ([]Resource, error) {
	out, err := c.elbClient.DescribeLoadBalancers(ctx, &elb.DescribeLoadBalancersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe classic load balancers in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, lb := range out.LoadBalancerDescriptions {
		resources = append(resources, Resource{
			Service:      ServiceELB,
			ResourceType: "Classic Load Balancer",
			ResourceID:   deref(lb.LoadBalancerName),
			Region:       c.region,
			Attributes: map[string]string{
				"scheme": deref(lb.Scheme),
			},
		})
	}
	return resources, nil
}

// NATGateways returns NAT gateways in the available or pending state;
// deleted gateways stop accruing the hourly charge.
func (c *RealInventoryClient) NATGateways(ctx context.Context) ([]Resource, error) {
	out, err := c.ec2Client.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe NAT gateways in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, nat := range out.NatGateways {
		state := string(nat.State)
		if state != "available" && state != "pending" {
			continue
		}
		resources = append(resources, Resource{
			Service:      ServiceVPC,
			ResourceType: "NAT Gateway",
			ResourceID:   deref(nat.NatGatewayId),
			Region:       c.region,
			State:        state,
			Attributes: map[string]string{
				"subnet_id": deref(nat.SubnetId),
			},
		})
	}
	return resources, nil
}

// ElasticIPs returns allocated Elastic IP addresses. Unassociated
// addresses are the ones that accrue charges, so association state is
// surfaced prominently.
func (c *RealInventoryClient) ElasticIPs(ctx context.Context) ([]Resource, error) {
	out, err := c.ec2Client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, address := range out.Addresses {
		id := deref(address.AllocationId)
		if id == "" {
			id = deref(address.PublicIp)
		}
		state := "unassociated"
		if address.AssociationId != nil {
			state = "associated"
		}
		resources = append(resources, Resource{
			Service:      ServiceVPC,
			ResourceType: "Elastic IP",
			ResourceID:   id,
			Region:       c.region,
			State:        state,
			Attributes: map[string]string{
				"public_ip":   deref(address.PublicIp),
				"instance_id": deref(address.InstanceId),
			},
		})
	}
	return resources, nil
}

// VPCEndpoints returns VPC endpoints.
func (c *RealInventoryClient) VPCEndpoints(ctx context.Context) ([]Resource, error) {
	out, err := c.ec2Client.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPC endpoints in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, endpoint := range out.VpcEndpoints {
		resources = append(resources, Resource{
			Service:      ServiceVPC,
			ResourceType: "VPC Endpoint",
			ResourceID:   deref(endpoint.VpcEndpointId),
			Region:       c.region,
			State:        string(endpoint.State),
			Attributes: map[string]string{
				"service_name": deref(endpoint.ServiceName),
				"vpc_id":       deref(endpoint.VpcId),
			},
		})
	}
	return resources, nil
}

// CacheClusters returns ElastiCache clusters.
func (c *RealInventoryClient) CacheClusters(ctx context.Context) ([]Resource, error) {
	out, err := c.cacheClient.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe cache clusters in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, cluster := range out.CacheClusters {
		resources = append(resources, Resource{
			Service:      ServiceElastiCache,
			ResourceType: "Cache Cluster",
			ResourceID:   deref(cluster.CacheClusterId),
			Region:       c.region,
			State:        deref(cluster.CacheClusterStatus),
			Attributes: map[string]string{
				"node_type": deref(cluster.CacheNodeType),
				"engine":    deref(cluster.Engine),
			},
		})
	}
	return resources, nil
}

// WarehouseClusters returns Redshift clusters.
func (c *RealInventoryClient) WarehouseClusters(ctx context.Context) ([]Resource, error) {
	out, err := c.dwClient.DescribeClusters(ctx, &redshift.DescribeClustersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe Redshift clusters in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, cluster := range out.Clusters {
		record := Resource{
			Service:      ServiceRedshift,
			ResourceType: "Cluster",
			ResourceID:   deref(cluster.ClusterIdentifier),
			Region:       c.region,
			State:        deref(cluster.ClusterStatus),
			Attributes: map[string]string{
				"node_type": deref(cluster.NodeType),
			},
		}
		if cluster.NumberOfNodes != nil {
			record.Attributes["number_of_nodes"] = strconv.FormatInt(int64(*cluster.NumberOfNodes), 10)
		}
		resources = append(resources, record)
	}
	return resources, nil
}

// Functions returns Lambda functions. Lambda reports no lifecycle state
// that matters for billing; runtime and memory size are what correlate
// with duration charges.
func (c *RealInventoryClient) Functions(ctx context.Context) ([]Resource, error) {
	out, err := c.fnClient.ListFunctions(ctx, &lambda.ListFunctionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list functions in %s: %w", c.region, err)
	}

	var resources []Resource
	for _, fn := range out.Functions {
		record := Resource{
			Service:      ServiceLambda,
			ResourceType: "Function",
			ResourceID:   deref(fn.FunctionName),
			Region:       c.region,
			Attributes: map[string]string{
				"runtime":       string(fn.Runtime),
				"last_modified": deref(fn.LastModified),
			},
		}
		if fn.MemorySize != nil {
			record.Attributes["memory_size"] = strconv.FormatInt(int64(*fn.MemorySize), 10)
		}
		resources = append(resources, record)
	}
	return resources, nil
}

// deref returns the string value of a pointer, or "" for nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
