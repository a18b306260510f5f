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

// Package runner orchestrates one report execution: idempotency check,
// cost aggregation, fleet scan, assembly, persistence, and delivery.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/costbeacon/costbeacon/internal/costs"
	"github.com/costbeacon/costbeacon/internal/ledger"
	"github.com/costbeacon/costbeacon/internal/notify"
	"github.com/costbeacon/costbeacon/internal/report"
	"github.com/costbeacon/costbeacon/internal/scanner"
	"github.com/costbeacon/costbeacon/pkg/aws"
	"github.com/costbeacon/costbeacon/pkg/config"
)

// Response is the process entry contract: an HTTP-shaped status code with
// a JSON body. On success the body is the full report plus the delivery
// outcome; on failure it is {"error", "message"}.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Runner executes the daily report pipeline.
type Runner struct {
	client aws.Client
	cfg    *config.Config
	log    logr.Logger

	// now is swappable for deterministic execution IDs in tests.
	now func() time.Time
}

// New creates a Runner.
func New(client aws.Client, cfg *config.Config, log logr.Logger) *Runner {
	return &Runner{
		client: client,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Run executes one report. Sub-system failures degrade per component
// (empty cost model, empty region, no marker) rather than aborting; only
// a panic above those boundaries yields a 500 response.
func (r *Runner) Run(ctx context.Context) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(fmt.Errorf("%v", rec), "report execution failed")
			resp = errorResponse(fmt.Errorf("%v", rec))
		}
	}()

	start := r.now()
	executionID := ledger.ExecutionID(start)
	log := r.log.WithValues("execution_id", executionID)
	log.Info("starting cost report execution")

	var gate *ledger.Gate
	if storage, err := r.client.Storage(ctx); err != nil {
		log.Error(err, "failed to create storage client, idempotency gate disabled")
	} else {
		gate = ledger.NewGate(storage, r.cfg.BucketName, r.log)
	}

	if gate != nil && gate.AlreadyProcessed(ctx, executionID) {
		log.Info("report already sent today")
		return alreadySentResponse(executionID, r.now())
	}

	model := costs.NewModel()
	if billing, err := r.client.Billing(ctx); err != nil {
		log.Error(err, "failed to create billing client, continuing with empty cost model")
	} else {
		model = costs.NewAggregator(billing, r.log, r.cfg.CostWindowDays).Fetch(ctx)
	}

	charged := scanner.ChargedServices(model.ChargedServices())
	byRegion := make(map[string][]aws.Resource)
	var global []aws.Resource
	if len(charged) > 0 {
		log.Info("found services with charges", "services", len(charged))
		fleet := scanner.NewFleetScanner(
			r.client,
			scanner.NewRegionScanner(r.client, r.log),
			r.log,
			r.cfg.ScanWorkers(),
			r.cfg.RegionScanTimeout,
		)
		byRegion, global = fleet.Scan(ctx, charged)
	}

	accountID, err := r.client.CallerIdentity(ctx)
	if err != nil {
		log.Error(err, "failed to resolve caller identity, omitting account from report")
		accountID = ""
	}

	elapsed := r.now().Sub(start)
	rep := report.Assemble(executionID, accountID, r.now(), model, byRegion, global, elapsed)
	log.Info("processing completed",
		"seconds", rep.ProcessingStats.ProcessingTimeSeconds,
		"resources", rep.ProcessingStats.ResourcesFound)

	// The marker goes in before delivery: at most one report per day, even
	// if the send below fails. A failed send is not retried until the next
	// day's scheduled run.
	if gate != nil {
		gate.MarkProcessed(ctx, executionID, rep)
	}

	if email, err := r.client.Email(ctx); err != nil {
		log.Error(err, "failed to create email client, report not delivered")
	} else {
		rep.EmailSent = notify.NewNotifier(email, r.log).
			Send(ctx, rep, r.cfg.SenderEmail, r.cfg.RecipientEmails)
	}
	log.Info("cost report completed", "email_sent", rep.EmailSent)

	body, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errorResponse(err)
	}
	return Response{StatusCode: 200, Body: string(body)}
}

// alreadySentResponse is the short-circuit response when today's marker
// already exists. It must be produced before any inventory or email work.
func alreadySentResponse(executionID string, now time.Time) Response {
	body, _ := json.Marshal(map[string]string{
		"message":      "Report already sent today",
		"execution_id": executionID,
		"timestamp":    now.UTC().Format(time.RFC3339),
	})
	return Response{StatusCode: 200, Body: string(body)}
}

func errorResponse(err error) Response {
	body, _ := json.Marshal(map[string]string{
		"error":   err.Error(),
		"message": "Failed to retrieve charged resources",
	})
	return Response{StatusCode: 500, Body: string(body)}
}
