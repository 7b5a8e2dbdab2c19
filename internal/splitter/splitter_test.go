package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplitflow/internal/codec"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf/pdftest"
)

// brokenWriterEngine loads documents with pdfcpu but fails to serialize.
type brokenWriterEngine struct {
	*pdf.PDFCPU
}

type brokenOutput struct{ pdf.Output }

func (brokenOutput) Serialize(context.Context) ([]byte, error) {
	return nil, errors.Join(models.ErrEncoding, errors.New("disk full"))
}

func (e brokenWriterEngine) NewOutput(src pdf.Document) (pdf.Output, error) {
	out, err := e.PDFCPU.NewOutput(src)
	if err != nil {
		return nil, err
	}
	return brokenOutput{out}, nil
}

func TestExecute_PreservesOrder(t *testing.T) {
	s := New(pdf.NewPDFCPU())
	source := pdftest.Document(10)

	out, err := s.Execute(context.Background(), source, []int{0, 1, 2, 4, 5, 6, 8, 9})
	require.NoError(t, err)
	require.NotNil(t, out)

	origins, err := pdftest.SourcePages(out.Bytes)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 8, 9}, origins)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 8, 9}, out.SourcePages)

	blob, err := codec.Decode(out.Encoded, "")
	require.NoError(t, err)
	assert.Equal(t, out.Bytes, blob.Bytes)
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name     string
		engine   pdf.Engine
		source   []byte
		included []int
		wantErr  error
	}{
		{
			name:     "corrupt source",
			engine:   pdf.NewPDFCPU(),
			source:   []byte("garbage"),
			included: []int{0},
			wantErr:  models.ErrDocumentLoad,
		},
		{
			name:     "index past last page",
			engine:   pdf.NewPDFCPU(),
			source:   pdftest.Document(3),
			included: []int{1, 3},
			wantErr:  models.ErrPageRange,
		},
		{
			name:     "descending indices",
			engine:   pdf.NewPDFCPU(),
			source:   pdftest.Document(3),
			included: []int{2, 1},
			wantErr:  models.ErrPageRange,
		},
		{
			name:     "duplicate indices",
			engine:   pdf.NewPDFCPU(),
			source:   pdftest.Document(3),
			included: []int{1, 1},
			wantErr:  models.ErrPageRange,
		},
		{
			name:     "empty selection",
			engine:   pdf.NewPDFCPU(),
			source:   pdftest.Document(3),
			included: nil,
			wantErr:  models.ErrEmptySelection,
		},
		{
			name:     "serialization failure",
			engine:   brokenWriterEngine{pdf.NewPDFCPU()},
			source:   pdftest.Document(3),
			included: []int{0},
			wantErr:  models.ErrEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.engine).Execute(context.Background(), tt.source, tt.included)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out, "partial output must never be exposed")
		})
	}
}
