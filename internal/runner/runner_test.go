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

package runner

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbeacon/costbeacon/internal/report"
	"github.com/costbeacon/costbeacon/pkg/aws"
	"github.com/costbeacon/costbeacon/pkg/config"
)

var fixedTime = time.Date(2025, time.March, 7, 8, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		SenderEmail:       "billing@example.com",
		RecipientEmails:   []string{"ops@example.com"},
		SESRegion:         "ap-southeast-2",
		BucketName:        "cost-reporter-state",
		DefaultRegion:     "us-east-1",
		CostWindowDays:    30,
		RegionScanTimeout: time.Second,
		MaxScanWorkers:    4,
	}
}

func testRunner(client *aws.MockClient) *Runner {
	r := New(client, testConfig(), logr.Discard())
	r.now = func() time.Time { return fixedTime }
	return r
}

func TestRun_HappyPath(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}
	client.BillingClientInstance.ServiceCosts = []aws.ServiceCost{
		{Service: "Amazon Elastic Compute Cloud - Compute", Amount: decimal.NewFromFloat(42.50)},
	}
	client.BillingClientInstance.UsageCosts = []aws.UsageCost{
		{
			Service:   "Amazon Elastic Compute Cloud - Compute",
			UsageType: "USE1-BoxUsage:m5.large",
			Amount:    decimal.NewFromFloat(42.50),
			Quantity:  decimal.NewFromInt(720),
		},
	}
	inventory := aws.NewMockInventoryClient()
	inventory.Listings[aws.MockInstances] = []aws.Resource{
		{Service: aws.ServiceEC2, ResourceType: "EC2 Instance", ResourceID: "i-1", Region: "us-east-1", State: "running"},
	}
	client.InventoryClients["us-east-1"] = inventory

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.Equal(t, "cost-report-2025-03-07", rep.ExecutionID)
	assert.Equal(t, "123456789012", rep.AccountID)
	assert.True(t, rep.EmailSent)
	require.Len(t, rep.DetailedResources, 1)
	assert.Equal(t, "i-1", rep.DetailedResources[0].ResourceID)

	// Marker and snapshot persisted before delivery.
	assert.Equal(t, []string{
		"cost-reporter-state/executions/cost-report-2025-03-07.json",
		"cost-reporter-state/reports/cost-report-2025-03-07-full-report.json",
	}, client.StorageClientInstance.PutCalls)

	require.Len(t, client.EmailClientInstance.Sent, 1)
	assert.Equal(t, "ops@example.com", client.EmailClientInstance.Sent[0].To)
}

// An existing marker short-circuits the run: no billing query, no scan,
// no email.
func TestRun_AlreadyProcessedShortCircuits(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}
	client.StorageClientInstance.Objects["cost-reporter-state/executions/cost-report-2025-03-07.json"] = []byte("{}")

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Report already sent today", body["message"])
	assert.Equal(t, "cost-report-2025-03-07", body["execution_id"])
	assert.Equal(t, "2025-03-07T08:30:00Z", body["timestamp"])

	assert.Zero(t, client.BillingClientInstance.Calls)
	assert.Empty(t, client.EmailClientInstance.Sent)
	assert.Empty(t, client.StorageClientInstance.PutCalls)
}

// No charges means no inventory scan, but the (empty) report still goes
// out and gets marked.
func TestRun_NoChargesSkipsScan(t *testing.T) {
	client := aws.NewMockClient()
	client.RegionList = []string{"us-east-1"}

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.True(t, rep.TotalCost.IsZero())
	assert.Empty(t, rep.DetailedResources)
	assert.Empty(t, client.InventoryClients, "no region scan without charges")
	assert.Len(t, client.StorageClientInstance.PutCalls, 2)
	assert.True(t, rep.EmailSent)
}

// The marker is written even when delivery fails, so the day is not
// retried, and the response records the failed send.
func TestRun_FailedDeliveryStillMarksDay(t *testing.T) {
	client := aws.NewMockClient()
	client.EmailClientInstance.SendError = context.DeadlineExceeded

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.False(t, rep.EmailSent)
	assert.Len(t, client.StorageClientInstance.PutCalls, 2)
}

// A gate lookup error degrades to "not processed": the report is produced
// rather than silently dropped.
func TestRun_GateLookupErrorStillRuns(t *testing.T) {
	client := aws.NewMockClient()
	client.StorageClientInstance.ExistsError = context.DeadlineExceeded

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.Equal(t, "cost-report-2025-03-07", rep.ExecutionID)
}

// A billing outage yields an empty-cost report, not a failure.
func TestRun_BillingErrorDegradesToEmptyModel(t *testing.T) {
	client := aws.NewMockClient()
	client.BillingClientInstance.ServiceError = context.DeadlineExceeded

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.True(t, rep.TotalCost.IsZero())
}

func TestRun_IdentityErrorOmitsAccount(t *testing.T) {
	client := aws.NewMockClient()
	client.IdentityError = context.DeadlineExceeded

	resp := testRunner(client).Run(context.Background())

	require.Equal(t, 200, resp.StatusCode)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rep))
	assert.Empty(t, rep.AccountID)
}

func TestErrorResponseShape(t *testing.T) {
	resp := errorResponse(context.DeadlineExceeded)

	assert.Equal(t, 500, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Failed to retrieve charged resources", body["message"])
	assert.Equal(t, context.DeadlineExceeded.Error(), body["error"])
}
