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

// Package usage maps raw billing usage-type codes to human-readable labels
// and measurement units.
//
// Usage-type codes are vendor-internal strings like "USE1-BoxUsage:m5.large"
// or "APS2-NatGateway-Hours". Classification is a total function: codes that
// match no known pattern fall back to the code itself with the region prefix
// stripped, paired with the unit "Units".
package usage

import "strings"

// regionPrefixes is the ordered list of known billing region prefixes.
// At most one prefix is stripped, and only at the start of the code.
var regionPrefixes = []string{
	"USE1-", "USE2-", "USW1-", "USW2-", "EUW1-", "EUW2-", "EUW3-",
	"APS1-", "APS2-", "APN1-", "APN2-", "SAE1-", "CAN1-", "EUC1-",
}

// Classify maps a raw usage-type code and its billing service name to a
// human-readable label and a measurement unit. It is deterministic and
// never fails.
func Classify(rawCode, service string) (label, unit string) {
	return Label(rawCode, service), UnitFor(rawCode, service)
}

// StripRegionPrefix removes one known region prefix from the start of a
// usage-type code. Codes without a matching prefix pass through unchanged,
// which also makes the operation idempotent: stripped codes no longer
// start with any known prefix.
func StripRegionPrefix(code string) string {
	for _, prefix := range regionPrefixes {
		if strings.HasPrefix(code, prefix) {
			return code[len(prefix):]
		}
	}
	return code
}

// Label maps a raw usage-type code to a friendlier name. Service-specific
// pattern tables take precedence; anything unmatched falls back to the
// region-stripped code.
func Label(rawCode, service string) string {
	cleaned := StripRegionPrefix(rawCode)

	switch {
	case strings.Contains(service, "Amazon Virtual Private Cloud") || strings.Contains(service, "VPC"):
		switch {
		case strings.Contains(cleaned, "NatGateway"):
			return "NAT Gateway Hours"
		case strings.Contains(cleaned, "PublicIP"):
			return "Elastic IP Addresses"
		case strings.Contains(cleaned, "VpcEndpoint"):
			return "VPC Endpoints"
		case strings.Contains(cleaned, "VPN"):
			return "VPN Connection Hours"
		}

	case strings.Contains(service, "Amazon Elastic Compute Cloud") || strings.Contains(service, "EC2"):
		switch {
		case strings.Contains(cleaned, "BoxUsage"):
			// BoxUsage codes carry the instance type after a colon.
			if _, instanceType, found := strings.Cut(cleaned, ":"); found {
				return "EC2 Instance - " + instanceType
			}
			return "EC2 Instance Hours"
		case strings.Contains(cleaned, "EBS"):
			switch {
			case strings.Contains(cleaned, "VolumeUsage"):
				return "EBS Volume Storage"
			case strings.Contains(cleaned, "SnapshotUsage"):
				return "EBS Snapshot Storage"
			case strings.Contains(cleaned, "IOPS"):
				return "EBS Provisioned IOPS"
			}
		case strings.Contains(cleaned, "DataTransfer"):
			return "Data Transfer"
		case strings.Contains(cleaned, "LoadBalancer"):
			return "Load Balancer Hours"
		}

	case strings.Contains(service, "Amazon Relational Database Service"):
		switch {
		case strings.Contains(cleaned, "InstanceUsage"):
			if _, instanceClass, found := strings.Cut(cleaned, ":"); found {
				return "RDS Instance - " + instanceClass
			}
			return "RDS Instance Hours"
		case strings.Contains(cleaned, "StorageUsage"):
			return "RDS Storage"
		case strings.Contains(cleaned, "BackupUsage"):
			return "RDS Backup Storage"
		case strings.Contains(cleaned, "IOPS"):
			return "RDS Provisioned IOPS"
		}

	case strings.Contains(service, "Amazon Simple Storage Service") || strings.Contains(service, "S3"):
		switch {
		case strings.Contains(cleaned, "StorageUsage"):
			return "S3 Storage"
		case strings.Contains(cleaned, "Requests"):
			return "S3 Requests"
		case strings.Contains(cleaned, "DataTransfer"):
			return "S3 Data Transfer"
		}

	case strings.Contains(service, "AWS Lambda"):
		switch {
		case strings.Contains(cleaned, "Request"):
			return "Lambda Requests"
		case strings.Contains(cleaned, "Duration"):
			return "Lambda Duration"
		}

	case strings.Contains(service, "Amazon ElastiCache"):
		switch {
		case strings.Contains(cleaned, "NodeUsage"):
			return "ElastiCache Node Hours"
		case strings.Contains(cleaned, "BackupUsage"):
			return "ElastiCache Backup Storage"
		}

	case strings.Contains(service, "Amazon CloudFront"):
		switch {
		case strings.Contains(cleaned, "DataTransfer"):
			return "CloudFront Data Transfer"
		case strings.Contains(cleaned, "Request"):
			return "CloudFront Requests"
		}
	}

	return cleaned
}

// UnitFor determines the measurement unit for a usage-type code. The raw
// code is matched case-insensitively; unmatched codes meter in "Units".
func UnitFor(rawCode, service string) string {
	code := strings.ToLower(rawCode)
	svc := strings.ToLower(service)

	switch {
	case strings.Contains(code, "natgateway"):
		if strings.Contains(code, "hour") {
			return "Hrs"
		}
		if strings.Contains(code, "byte") || strings.Contains(code, "gb") {
			return "GB"
		}

	case strings.Contains(code, "boxusage") || strings.Contains(code, "instanceusage"):
		return "Hrs"

	case strings.Contains(code, "volumeusage"), strings.Contains(code, "snapshotusage"):
		return "GB-Mo"

	case strings.Contains(code, "iops"):
		return "IOPS-Mo"

	case strings.Contains(code, "storageusage") && strings.Contains(svc, "s3"):
		return "GB-Mo"

	case strings.Contains(code, "storageusage") && strings.Contains(code, "rds"):
		return "GB-Mo"

	case strings.Contains(code, "request") && strings.Contains(svc, "s3"):
		return "Requests"

	case strings.Contains(code, "request") && strings.Contains(svc, "lambda"):
		return "Requests"

	case strings.Contains(code, "duration") && strings.Contains(svc, "lambda"):
		return "GB-Seconds"

	case strings.Contains(code, "request") && strings.Contains(svc, "cloudfront"):
		return "Requests"

	case strings.Contains(code, "datatransfer"):
		return "GB"

	case strings.Contains(code, "loadbalancer"):
		return "Hrs"
	}

	return "Units"
}
