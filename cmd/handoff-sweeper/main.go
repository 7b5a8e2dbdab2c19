package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/pdfsplitflow/internal/services"
)

var (
	sweeperInstance *services.SweeperFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered on a schedule through Pub/Sub.
	functions.CloudEvent("SweepHandoffs", sweepHandoffs)
}

// main is required by the Go Functions Framework.
func main() {}

// sweepHandoffs is the Cloud Function entry point.
func sweepHandoffs(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		sweeperInstance, initErr = services.NewSweeper(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	// Returning the error marks the invocation as failed so it is retried.
	_, err := sweeperInstance.Process(ctx, e)
	return err
}
