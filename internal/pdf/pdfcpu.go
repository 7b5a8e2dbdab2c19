package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// PDFCPU is the pdfcpu-backed Engine. Everything happens in memory.
type PDFCPU struct{}

// NewPDFCPU returns the default engine.
func NewPDFCPU() *PDFCPU { return &PDFCPU{} }

type pdfcpuDocument struct {
	ctx *model.Context
}

func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

type pdfcpuOutput struct {
	src     *pdfcpuDocument
	pageNrs []int
}

func newConfiguration() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// Load parses and validates data. Any failure, including a panic inside the
// parser, is reported as models.ErrDocumentLoad.
func (e *PDFCPU) Load(ctx context.Context, data []byte) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", models.ErrDocumentLoad)
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: parser panic: %v", models.ErrDocumentLoad, r)
		}
	}()

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentLoad, err)
	}
	return &pdfcpuDocument{ctx: pdfCtx}, nil
}

// NewOutput starts an empty output backed by src, which must come from Load.
func (e *PDFCPU) NewOutput(src Document) (Output, error) {
	d, ok := src.(*pdfcpuDocument)
	if !ok {
		return nil, fmt.Errorf("%w: source was not loaded by pdfcpu", models.ErrDocumentLoad)
	}
	return &pdfcpuOutput{src: d}, nil
}

func (o *pdfcpuOutput) CopyPage(index int) error {
	if index < 0 || index >= o.src.PageCount() {
		return fmt.Errorf("%w: index %d, document has %d pages", models.ErrPageRange, index, o.src.PageCount())
	}
	// pdfcpu numbers pages from 1.
	o.pageNrs = append(o.pageNrs, index+1)
	return nil
}

func (o *pdfcpuOutput) PageCount() int { return len(o.pageNrs) }

func (o *pdfcpuOutput) Serialize(ctx context.Context) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(o.pageNrs) == 0 {
		return nil, fmt.Errorf("%w: output has no pages", models.ErrEncoding)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: writer panic: %v", models.ErrEncoding, r)
		}
	}()

	extracted, err := pdfcpu.ExtractPages(o.src.ctx, o.pageNrs, false)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract pages: %v", models.ErrEncoding, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(extracted, &buf); err != nil {
		return nil, fmt.Errorf("%w: failed to write document: %v", models.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
