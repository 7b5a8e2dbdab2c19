package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/pdfsplitflow/internal/handoff"
)

// SweeperFunction removes handoff payloads that were never picked up.
type SweeperFunction struct {
	store handoff.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewSweeper creates a SweeperFunction from the environment.
func NewSweeper(ctx context.Context) (*SweeperFunction, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if config.HandoffBucket == "" {
		return nil, fmt.Errorf("HANDOFF_BUCKET environment variable must be set")
	}
	handoffStore, err := newHandoffStore(ctx, config)
	if err != nil {
		return nil, err
	}
	slog.Info("Handoff sweeper initialized.", "bucket", config.HandoffBucket, "ttl", config.HandoffTTL.String())
	return NewSweeperWith(handoffStore, config.HandoffTTL), nil
}

// NewSweeperWith wires a SweeperFunction from an explicit store.
func NewSweeperWith(handoffStore handoff.Store, ttl time.Duration) *SweeperFunction {
	return &SweeperFunction{store: handoffStore, ttl: ttl, now: time.Now}
}

// Process runs one sweep for the triggering event.
func (f *SweeperFunction) Process(ctx context.Context, e cloudevents.Event) (int, error) {
	logCtx := slog.With("eventId", e.ID(), "eventType", e.Type())
	cutoff := f.now().Add(-f.ttl)
	logCtx.Info("Sweeping expired handoff payloads.", "cutoff", cutoff)

	removed, err := f.store.Sweep(ctx, cutoff)
	if err != nil {
		logCtx.Error("Handoff sweep failed", "error", err)
		return 0, err
	}
	logCtx.Info("Handoff sweep complete.", "removed", removed)
	return removed, nil
}
