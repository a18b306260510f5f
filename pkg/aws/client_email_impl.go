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

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const emailCharset = "UTF-8"

// RealEmailClient is a production implementation of EmailClient backed by
// SES SendEmail. SES identity verification is regional, so the client is
// bound to the configured SES region rather than the job's default region.
type RealEmailClient struct {
	client *ses.Client
}

// NewRealEmailClient creates an SES client in the given region.
func NewRealEmailClient(base awssdk.Config, region string) *RealEmailClient {
	return &RealEmailClient{client: ses.NewFromConfig(regionConfig(base, region))}
}

// Send delivers one message with both HTML and plain-text bodies and
// returns the SES message ID.
func (c *RealEmailClient) Send(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	out, err := c.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    awssdk.String(subject),
				Charset: awssdk.String(emailCharset),
			},
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Data:    awssdk.String(htmlBody),
					Charset: awssdk.String(emailCharset),
				},
				Text: &sestypes.Content{
					Data:    awssdk.String(textBody),
					Charset: awssdk.String(emailCharset),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return deref(out.MessageId), nil
}
