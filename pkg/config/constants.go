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

package config

import "time"

const (
	// DefaultSenderEmail is the placeholder From address used when
	// SENDER_EMAIL is not set. Deployments must override it with a
	// verified SES identity for delivery to work.
	DefaultSenderEmail = "your-sender@example.com"

	// DefaultSESRegion is the region the SES client is created in when
	// AWS_REGION_SES is not set.
	DefaultSESRegion = "ap-southeast-2"

	// DefaultBucketName is the S3 bucket holding execution markers and
	// report snapshots when S3_BUCKET_NAME is not set.
	DefaultBucketName = "aws-cost-reporter-state"

	// DefaultRegion is the region used for non-regional API calls
	// (Cost Explorer, DescribeRegions, STS).
	DefaultRegion = "us-east-1"

	// DefaultCostWindowDays is the Cost Explorer lookback window.
	// Cost data itself lags the billing pipeline by up to 48 hours, so a
	// 30-day window smooths over the ragged trailing edge.
	DefaultCostWindowDays = 30

	// DefaultRegionScanTimeout is the per-region inventory scan ceiling.
	DefaultRegionScanTimeout = 30 * time.Second

	// MaxDefaultScanWorkers caps the derived worker-pool size regardless
	// of core count.
	MaxDefaultScanWorkers = 32
)
