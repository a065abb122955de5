package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	"NewsScanner/internal/app"
	"NewsScanner/internal/config"
	"NewsScanner/internal/logging"
)

// Response is returned to the Lambda caller.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Collected  int    `json:"collected"`
	Relevant   int    `json:"relevant"`
	Persisted  int    `json:"persisted"`
	Failed     int    `json:"failed"`
}

// Handler performs one scan per invocation. Scheduler settings are ignored.
func Handler(ctx context.Context, event any) (Response, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, "json")

	if err := cfg.Validate(); err != nil {
		return Response{StatusCode: 400, Message: err.Error()}, err
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}
	defer application.Close()

	stats, err := application.RunOnce(ctx)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	return Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("persisted %d of %d headlines", stats.Persisted, stats.Collected),
		Collected:  stats.Collected,
		Relevant:   stats.Relevant,
		Persisted:  stats.Persisted,
		Failed:     stats.Failed,
	}, nil
}

func main() {
	lambda.Start(Handler)
}
