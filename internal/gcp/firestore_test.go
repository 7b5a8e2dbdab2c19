package gcp

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", status.Error(codes.NotFound, "no such document"), true},
		{"other code", status.Error(codes.PermissionDenied, "denied"), false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

// TestSessionKV_Emulator runs against the Firestore emulator when
// FIRESTORE_EMULATOR_HOST is set.
func TestSessionKV_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := NewFirestoreClient(ctx, "pdfsplit-test")
	require.NoError(t, err)
	defer client.Close()

	kv := NewSessionKV(client, "splitSessions", uuid.NewString())

	_, ok, err := kv.Get(ctx, "pdfsplit.storedFiles")
	require.NoError(t, err)
	assert.False(t, ok, "missing document reads as absent")
	require.NoError(t, kv.Remove(ctx, "pdfsplit.storedFiles"), "removing from a missing document is a no-op")

	require.NoError(t, kv.Set(ctx, "pdfsplit.storedFiles", `[{"id":"1"}]`))
	require.NoError(t, kv.Set(ctx, "other", "x"))
	v, ok, err := kv.Get(ctx, "pdfsplit.storedFiles")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, kv.Remove(ctx, "pdfsplit.storedFiles"))
	_, ok, err = kv.Get(ctx, "pdfsplit.storedFiles")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, "other")
	assert.True(t, ok)

	require.NoError(t, kv.Drop(ctx))
	_, err = kv.doc.Get(ctx)
	assert.True(t, isNotFound(err), "dropped session leaves no document")
	require.NoError(t, kv.Drop(ctx), "dropping twice is a no-op")
}
