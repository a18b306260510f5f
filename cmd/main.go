/*
Copyright 2025 Costbeacon Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Main entrypoint for the Costbeacon reporting job.
//
// The binary normally runs inside AWS Lambda on a daily schedule; the
// trigger payload is opaque and ignored beyond starting an execution.
// The --once flag runs a single execution locally instead, which is the
// quickest way to validate configuration and credentials during
// development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/costbeacon/costbeacon/internal/runner"
	"github.com/costbeacon/costbeacon/pkg/aws"
	"github.com/costbeacon/costbeacon/pkg/config"
)

func main() {
	var once bool
	flag.BoolVar(&once, "once", false,
		"Run a single report execution locally and exit instead of serving Lambda invocations.")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := aws.NewClient(ctx, aws.ClientConfig{
		DefaultRegion: cfg.DefaultRegion,
		SESRegion:     cfg.SESRegion,
	})
	if err != nil {
		log.Error(err, "failed to create AWS client")
		os.Exit(1)
	}

	run := runner.New(client, cfg, log)

	if once {
		resp := run.Run(ctx)
		fmt.Println(resp.Body)
		if resp.StatusCode != 200 {
			os.Exit(1)
		}
		return
	}

	lambda.Start(func(ctx context.Context, _ json.RawMessage) (runner.Response, error) {
		return run.Run(ctx), nil
	})
}

// newLogger builds a zap-backed logr.Logger at the configured level.
// Debug level also enables the V(1) detail logs.
func newLogger(level string) (logr.Logger, error) {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zlog, err := zapCfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zlog), nil
}
