package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/pdfsplitflow/internal/gcp"
	"github.com/Lllllllleong/pdfsplitflow/internal/handoff"
	"github.com/Lllllllleong/pdfsplitflow/internal/store"
)

// DefaultGuardMessage is shown when a guarded session is closed.
const DefaultGuardMessage = "A split is in progress or your page selection is not saved. Leave anyway?"

// Config holds configuration shared by the split functions, read from the environment.
type Config struct {
	ProjectID         string
	SessionCollection string
	HandoffBucket     string
	HandoffPrefix     string
	MaxInlineBytes    int
	HandoffTTL        time.Duration
	SessionIdleTTL    time.Duration
	SuccessURL        string
	GuardMessage      string
}

// LoadConfig loads and validates the environment. An empty PROJECT_ID selects
// the in-memory session KV; an empty HANDOFF_BUCKET limits handoff to inline
// results.
func LoadConfig() (*Config, error) {
	maxInline, err := gcp.GetEnvInt("HANDOFF_MAX_INLINE_BYTES", handoff.DefaultMaxInlineBytes)
	if err != nil {
		return nil, err
	}
	if maxInline <= 0 {
		return nil, fmt.Errorf("HANDOFF_MAX_INLINE_BYTES must be positive, got %d", maxInline)
	}
	handoffTTL, err := gcp.GetEnvDuration("HANDOFF_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	idleTTL, err := gcp.GetEnvDuration("SESSION_IDLE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		ProjectID:         gcp.GetEnv("PROJECT_ID", ""),
		SessionCollection: gcp.GetEnv("SESSION_COLLECTION", "splitSessions"),
		HandoffBucket:     gcp.GetEnv("HANDOFF_BUCKET", ""),
		HandoffPrefix:     gcp.GetEnv("HANDOFF_PREFIX", "handoff/"),
		MaxInlineBytes:    maxInline,
		HandoffTTL:        handoffTTL,
		SessionIdleTTL:    idleTTL,
		SuccessURL:        gcp.GetEnv("SUCCESS_URL", "/success"),
		GuardMessage:      gcp.GetEnv("GUARD_MESSAGE", DefaultGuardMessage),
	}, nil
}

// newHandoffStore returns nil without a bucket. The session and success
// functions run as separate processes, so an in-memory store would never be
// shared between them; results above the inline limit are refused instead.
func newHandoffStore(ctx context.Context, config *Config) (handoff.Store, error) {
	if config.HandoffBucket == "" {
		slog.Warn("HANDOFF_BUCKET not set, split results above the inline limit cannot be handed off.", "maxInlineBytes", config.MaxInlineBytes)
		return nil, nil
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return handoff.NewGCSStore(storageClient, config.HandoffBucket, config.HandoffPrefix), nil
}

func newKVFactory(ctx context.Context, config *Config) (func(sessionID string) store.KV, error) {
	if config.ProjectID == "" {
		slog.Warn("PROJECT_ID not set, session metadata is kept in process memory.")
		return func(string) store.KV { return store.NewMemoryKV() }, nil
	}
	client, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return func(sessionID string) store.KV {
		return gcp.NewSessionKV(client, config.SessionCollection, sessionID)
	}, nil
}
