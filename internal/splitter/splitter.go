// Package splitter materializes a page selection into a new PDF.
package splitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pdfsplitflow/internal/codec"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
)

// Splitter runs one split at a time against a PDF engine.
type Splitter struct {
	engine pdf.Engine
}

// New returns a Splitter using engine.
func New(engine pdf.Engine) *Splitter {
	return &Splitter{engine: engine}
}

// Execute copies the pages at included (0-based, strictly ascending) out of
// source into a new document and encodes it. It is all-or-nothing: on error
// no output is returned.
func (s *Splitter) Execute(ctx context.Context, source []byte, included []int) (*models.SplitOutput, error) {
	logCtx := slog.With("sourceBytes", len(source), "pageCount", len(included))
	logCtx.Info("Starting split.")

	if len(included) == 0 {
		return nil, models.ErrEmptySelection
	}
	for i := 1; i < len(included); i++ {
		if included[i] <= included[i-1] {
			return nil, fmt.Errorf("%w: indices must be strictly ascending, got %d after %d", models.ErrPageRange, included[i], included[i-1])
		}
	}

	doc, err := s.engine.Load(ctx, source)
	if err != nil {
		logCtx.Error("Failed to load source document", "error", err)
		return nil, err
	}

	out, err := s.engine.NewOutput(doc)
	if err != nil {
		logCtx.Error("Failed to create output document", "error", err)
		return nil, err
	}
	for _, idx := range included {
		if err := out.CopyPage(idx); err != nil {
			logCtx.Error("Failed to copy page", "pageIndex", idx, "sourcePages", doc.PageCount(), "error", err)
			return nil, err
		}
	}

	data, err := out.Serialize(ctx)
	if err != nil {
		logCtx.Error("Failed to serialize output document", "error", err)
		return nil, err
	}

	logCtx.Info("Split complete.", "outputBytes", len(data))
	return &models.SplitOutput{
		Bytes:       data,
		Encoded:     codec.Encode(data),
		SourcePages: append([]int(nil), included...),
	}, nil
}
