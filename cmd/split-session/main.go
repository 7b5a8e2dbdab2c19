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
	sessionInstance *services.SessionFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleSplitSession", handleSplitSession)
}

// main is required by the Go Functions Framework.
func main() {}

// handleSplitSession is the HTTP entry point for split session actions.
func handleSplitSession(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		sessionInstance, initErr = services.NewSessionFunction(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Split session initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	sessionInstance.HandleSession(w, r)
}
