package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/pdfsplitflow/internal/services"
)

var (
	successInstance *services.SuccessFunction
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleSplitSuccess", handleSplitSuccess)
}

func main() {}

// handleSplitSuccess serves the split result carried in the query string.
func handleSplitSuccess(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		successInstance, initErr = services.NewSuccessFunction(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Split success initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	successInstance.HandleSuccess(w, r)
}
