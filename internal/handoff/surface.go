package handoff

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Lllllllleong/pdfsplitflow/internal/codec"
)

// View is what the success surface shows.
type View struct {
	// Waiting is set while the navigation parameters are absent.
	Waiting   bool
	Filename  string
	PageCount int
	Download  *codec.Blob
}

// Surface turns navigation parameters into a downloadable result.
type Surface struct {
	carrier *Carrier
}

// NewSurface returns a Surface reading through carrier.
func NewSurface(carrier *Carrier) *Surface {
	return &Surface{carrier: carrier}
}

// Render returns a waiting view when q lacks the result parameters, and a
// download view otherwise. It never polls: the view is derived from q alone.
func (s *Surface) Render(ctx context.Context, q url.Values) (*View, error) {
	result, ok, err := s.carrier.Take(ctx, q)
	if !ok {
		return &View{Waiting: true}, nil
	}
	if err != nil {
		return nil, err
	}
	blob, err := codec.Decode(result.Encoded, codec.ContentTypePDF)
	if err != nil {
		return nil, err
	}
	return &View{
		Filename:  fmt.Sprintf("%s-split.pdf", result.FilenameStem),
		PageCount: result.PageCount,
		Download:  blob,
	}, nil
}
