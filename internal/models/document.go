package models

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadedFile is a user-selected PDF held in memory for the lifetime of a
// split session. It is either absent or fully populated.
type UploadedFile struct {
	ID    string
	Name  string
	Size  int64
	Bytes []byte
}

// NewUploadedFile assigns a fresh identity to the given bytes.
func NewUploadedFile(name string, data []byte) *UploadedFile {
	return &UploadedFile{
		ID:    uuid.New().String(),
		Name:  name,
		Size:  int64(len(data)),
		Bytes: data,
	}
}

// Metadata returns the byte-free mirror of the file.
func (f *UploadedFile) Metadata() SessionFileMetadata {
	return SessionFileMetadata{ID: f.ID, Name: f.Name, Size: f.Size}
}

// Stem is the file name without directory or extension, used to name the output.
func (f *UploadedFile) Stem() string {
	base := filepath.Base(f.Name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "document"
	}
	return stem
}

// SessionFileMetadata is what survives a reload: enough to know that
// something was uploaded, never the bytes themselves.
type SessionFileMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// PageEntry tracks whether one source page is kept in the output.
type PageEntry struct {
	Index    int  `json:"index"`
	Included bool `json:"included"`
}

// SplitOutput is what the execution engine produces for one split.
type SplitOutput struct {
	Bytes       []byte
	Encoded     string
	SourcePages []int
}

// SplitResult is the encoded output plus the display metadata carried to the
// success surface.
type SplitResult struct {
	Encoded      string `json:"encoded"`
	FilenameStem string `json:"filenameStem"`
	PageCount    int    `json:"pageCount"`
	SourcePages  []int  `json:"sourcePages,omitempty"`
}
