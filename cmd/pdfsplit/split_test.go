package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf/pdftest"
)

func writeInput(t *testing.T, pages int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawing.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Document(pages), 0o644))
	return path
}

func TestRunSplit(t *testing.T) {
	tests := []struct {
		name     string
		keep     string
		drop     string
		wantPage []int
	}{
		{name: "keep list", keep: "5,1-2", wantPage: []int{0, 1, 4}},
		{name: "drop pages", drop: "4,8", wantPage: []int{0, 1, 2, 4, 5, 6, 8, 9}},
		{name: "no selection keeps everything", wantPage: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t, 10)
			written, pages, err := runSplit(context.Background(), splitOptions{input: input, keep: tt.keep, drop: tt.drop, suffix: "-split"})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(filepath.Dir(input), "drawing-split.pdf"), written)
			assert.Equal(t, len(tt.wantPage), pages)

			data, err := os.ReadFile(written)
			require.NoError(t, err)
			origins, err := pdftest.SourcePages(data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, origins)
		})
	}
}

func TestRunSplit_DropEverything(t *testing.T) {
	input := writeInput(t, 2)
	_, _, err := runSplit(context.Background(), splitOptions{input: input, drop: "1-2", suffix: "-split"})
	assert.ErrorIs(t, err, models.ErrEmptySelection)
}

func TestRunSplit_ExplicitOutput(t *testing.T) {
	input := writeInput(t, 3)
	out := filepath.Join(t.TempDir(), "first.pdf")
	written, pages, err := runSplit(context.Background(), splitOptions{input: input, output: out, keep: "1"})
	require.NoError(t, err)
	assert.Equal(t, out, written)
	assert.Equal(t, 1, pages)
}
