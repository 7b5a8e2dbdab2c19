package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// sessionDoc is the Firestore shape of one session's key/value entries.
type sessionDoc struct {
	Entries   map[string]string `firestore:"entries"`
	UpdatedAt time.Time         `firestore:"updatedAt"`
}

// SessionKV stores the key/value entries of one split session in a single
// Firestore document, so they go away together with the session.
type SessionKV struct {
	doc *firestore.DocumentRef
}

// NewSessionKV returns the KV for sessionID inside collection.
func NewSessionKV(client *firestore.Client, collection, sessionID string) *SessionKV {
	return &SessionKV{doc: client.Collection(collection).Doc(sessionID)}
}

func (k *SessionKV) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := k.doc.Get(ctx)
	if isNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session %s: %w", k.doc.ID, err)
	}
	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", false, fmt.Errorf("failed to decode session %s: %w", k.doc.ID, err)
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

func (k *SessionKV) Set(ctx context.Context, key, value string) error {
	data := map[string]interface{}{
		"entries":   map[string]interface{}{key: value},
		"updatedAt": time.Now(),
	}
	if _, err := k.doc.Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to write session %s: %w", k.doc.ID, err)
	}
	return nil
}

func (k *SessionKV) Remove(ctx context.Context, key string) error {
	updates := []firestore.Update{
		{FieldPath: firestore.FieldPath{"entries", key}, Value: firestore.Delete},
		{Path: "updatedAt", Value: time.Now()},
	}
	_, err := k.doc.Update(ctx, updates)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove %s from session %s: %w", key, k.doc.ID, err)
	}
	return nil
}

// Drop deletes the session document. A missing document is not an error.
func (k *SessionKV) Drop(ctx context.Context) error {
	_, err := k.doc.Delete(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete session %s: %w", k.doc.ID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}
