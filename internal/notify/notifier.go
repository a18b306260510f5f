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

// Package notify renders the report as HTML and plain text and delivers
// it over email.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/costbeacon/costbeacon/internal/report"
	"github.com/costbeacon/costbeacon/pkg/aws"
)

// Notifier sends the rendered report to the configured recipients.
type Notifier struct {
	email aws.EmailClient
	log   logr.Logger

	// now is swappable for deterministic subjects in tests.
	now func() time.Time
}

// NewNotifier creates a Notifier over the given email client.
func NewNotifier(email aws.EmailClient, log logr.Logger) *Notifier {
	return &Notifier{
		email: email,
		log:   log.WithName("notify"),
		now:   time.Now,
	}
}

// Send renders the report once and attempts delivery to every recipient
// independently, so one rejected address cannot abort the rest of the
// list. It returns true iff at least one recipient accepted the message.
//
// A list with no usable addresses (empty, or blanks only) is a
// configuration problem: it is logged as a warning and returns false
// without any send attempt.
func (n *Notifier) Send(ctx context.Context, rep *report.Report, sender string, recipients []string) bool {
	valid := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient != "" {
			valid = append(valid, recipient)
		}
	}
	if len(valid) == 0 {
		n.log.Info("no recipient emails configured, skipping delivery")
		return false
	}

	subject := "AWS Detailed Cost Report - " + n.now().UTC().Format("2006-01-02 15:04 UTC")

	htmlBody, err := RenderHTML(rep)
	if err != nil {
		n.log.Error(err, "failed to render HTML body")
		return false
	}
	textBody, err := RenderText(rep)
	if err != nil {
		n.log.Error(err, "failed to render text body")
		return false
	}

	delivered := 0
	for _, recipient := range valid {
		messageID, err := n.email.Send(ctx, sender, recipient, subject, htmlBody, textBody)
		if err != nil {
			n.log.Error(err, "failed to send report", "recipient", recipient)
			continue
		}
		n.log.Info("sent report", "recipient", recipient, "message_id", messageID)
		delivered++
	}

	if delivered < len(valid) {
		n.log.Info("delivery incomplete", "delivered", delivered, "recipients", len(valid))
	}
	return delivered > 0
}
