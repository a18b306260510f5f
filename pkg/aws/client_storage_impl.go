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
	"bytes"
	"context"
	"errors"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// RealStorageClient is a production implementation of StorageClient backed
// by S3 HeadObject and PutObject.
type RealStorageClient struct {
	client *s3.Client
}

// NewRealStorageClient creates an S3 client from the base SDK configuration.
func NewRealStorageClient(base awssdk.Config) *RealStorageClient {
	return &RealStorageClient{client: s3.NewFromConfig(base)}
}

// Exists reports whether the object exists. A NotFound response maps to
// (false, nil); any other error is returned so the caller can apply its
// own policy.
func (c *RealStorageClient) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head s3://%s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// Put writes an object with the given content type.
func (c *RealStorageClient) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(body),
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// isNotFound reports whether an S3 error means the object does not exist.
// HeadObject surfaces missing keys as the modeled NotFound type or, behind
// some bucket policies, as a bare 404/NotFound API error code.
func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}
