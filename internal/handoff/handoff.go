// Package handoff carries a split result across the navigation to the
// success surface, either inline in the query string or through a
// short-lived, read-once store.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// Query parameter names.
const (
	ParamData  = "data"
	ParamName  = "name"
	ParamPages = "pages"
	ParamToken = "token"
)

// DefaultMaxInlineBytes keeps the success URL well under common URL limits.
const DefaultMaxInlineBytes = 32 * 1024

// ErrNotFound is returned when a token has expired or was already consumed.
var ErrNotFound = errors.New("handoff payload not found")

// ErrInvalidParameters is returned when the parameters are present but unusable.
var ErrInvalidParameters = errors.New("invalid handoff parameters")

// ErrNoStore is returned by Put when a payload exceeds the inline limit and
// the carrier has no store to spill it to.
var ErrNoStore = errors.New("handoff payload exceeds the inline limit and no store is configured")

// Store keeps payloads too large for the query string.
type Store interface {
	Put(ctx context.Context, token string, result models.SplitResult) error
	// Take returns the payload and removes it.
	Take(ctx context.Context, token string) (*models.SplitResult, error)
	// Sweep removes payloads created before olderThan and reports how many.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}

// Carrier writes a result into navigation parameters and reads it back.
type Carrier struct {
	store     Store
	maxInline int
}

// NewCarrier returns a Carrier. maxInline <= 0 selects DefaultMaxInlineBytes.
// A nil store limits the carrier to inline payloads.
func NewCarrier(store Store, maxInline int) *Carrier {
	if maxInline <= 0 {
		maxInline = DefaultMaxInlineBytes
	}
	return &Carrier{store: store, maxInline: maxInline}
}

// Put encodes result as query parameters, spilling the payload to the store
// when it is larger than the inline limit.
func (c *Carrier) Put(ctx context.Context, result models.SplitResult) (url.Values, error) {
	q := url.Values{}
	q.Set(ParamName, result.FilenameStem)
	q.Set(ParamPages, strconv.Itoa(result.PageCount))

	if len(result.Encoded) <= c.maxInline {
		q.Set(ParamData, result.Encoded)
		return q, nil
	}
	if c.store == nil {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrNoStore, len(result.Encoded), c.maxInline)
	}

	token := uuid.New().String()
	if err := c.store.Put(ctx, token, result); err != nil {
		return nil, fmt.Errorf("failed to store handoff payload: %w", err)
	}
	slog.Info("Handoff payload stored out of band.", "token", token, "encodedBytes", len(result.Encoded))
	q.Set(ParamToken, token)
	return q, nil
}

// Take reads the result from q. ok is false when the required parameters
// are absent.
func (c *Carrier) Take(ctx context.Context, q url.Values) (result *models.SplitResult, ok bool, err error) {
	name, pagesRaw := q.Get(ParamName), q.Get(ParamPages)
	data, token := q.Get(ParamData), q.Get(ParamToken)
	if name == "" || pagesRaw == "" || (data == "" && token == "") {
		return nil, false, nil
	}
	pages, err := strconv.Atoi(pagesRaw)
	if err != nil || pages < 0 {
		return nil, true, fmt.Errorf("%w: %s=%q", ErrInvalidParameters, ParamPages, pagesRaw)
	}

	if data != "" {
		return &models.SplitResult{Encoded: data, FilenameStem: name, PageCount: pages}, true, nil
	}
	if c.store == nil {
		return nil, true, ErrNotFound
	}
	stored, err := c.store.Take(ctx, token)
	if err != nil {
		return nil, true, err
	}
	return stored, true, nil
}
