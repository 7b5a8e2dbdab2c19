// Package codec converts PDF bytes to and from the text-safe form used to
// carry a split result across a navigation boundary.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// ContentTypePDF is the default content type of decoded blobs.
const ContentTypePDF = "application/pdf"

// Blob is a typed binary object ready to be offered for download.
type Blob struct {
	Bytes       []byte
	ContentType string
}

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int { return len(b.Bytes) }

// Reader returns a fresh seekable reader over the blob contents.
func (b *Blob) Reader() io.ReadSeeker { return bytes.NewReader(b.Bytes) }

// Encode maps b to standard padded base64. Empty input yields "".
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode inverts Encode and tags the bytes with contentType, which defaults
// to application/pdf when empty. text must be valid base64; anything else
// yields an error wrapping models.ErrEncoding.
func Decode(text, contentType string) (*Blob, error) {
	if contentType == "" {
		contentType = ContentTypePDF
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transport text: %v", models.ErrEncoding, err)
	}
	return &Blob{Bytes: data, ContentType: contentType}, nil
}
