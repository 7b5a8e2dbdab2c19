// Package pdf defines the document capability the split workflow depends on
// and implements it on top of pdfcpu.
package pdf

import "context"

// Document is a loaded, page-addressable source document.
type Document interface {
	PageCount() int
}

// Output accumulates pages copied from a source document.
type Output interface {
	// CopyPage appends the 0-based source page to the output.
	CopyPage(index int) error
	PageCount() int
	Serialize(ctx context.Context) ([]byte, error)
}

// Engine loads documents and creates outputs from them.
type Engine interface {
	Load(ctx context.Context, data []byte) (Document, error)
	NewOutput(src Document) (Output, error)
}
