package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lllllllleong/pdfsplitflow/internal/codec"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
	"github.com/Lllllllleong/pdfsplitflow/internal/splitter"
	"github.com/Lllllllleong/pdfsplitflow/internal/store"
	"github.com/Lllllllleong/pdfsplitflow/internal/workflow"
)

// splitOptions are the inputs of one split run.
type splitOptions struct {
	input  string
	output string
	keep   string
	drop   string
	suffix string
}

var splitCmd = &cobra.Command{
	Use:   "split <file.pdf>",
	Short: "Write a PDF containing only the selected pages",
	Long: `Split keeps the pages named by --keep, or every page except those named
by --drop. Pages are 1-based and may be given as lists and ranges, e.g. 1,3-5.
The output preserves the original page order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := splitOptions{input: args[0], suffix: viper.GetString("suffix")}
		opts.output, _ = cmd.Flags().GetString("output")
		opts.keep, _ = cmd.Flags().GetString("keep")
		opts.drop, _ = cmd.Flags().GetString("drop")

		written, pages, err := runSplit(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", written, pages)
		return nil
	},
}

func init() {
	splitCmd.Flags().StringP("output", "o", "", "output file (default: <input><suffix>.pdf)")
	splitCmd.Flags().String("keep", "", "pages to keep, e.g. 1,3-5")
	splitCmd.Flags().String("drop", "", "pages to drop, e.g. 4,8")
	splitCmd.Flags().String("suffix", "-split", "suffix for the default output name")
	splitCmd.MarkFlagsMutuallyExclusive("keep", "drop")
	_ = viper.BindPFlag("suffix", splitCmd.Flags().Lookup("suffix"))

	rootCmd.AddCommand(splitCmd)
}

// runSplit drives the workflow for one file and returns the path written and
// its page count.
func runSplit(ctx context.Context, opts splitOptions) (string, int, error) {
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return "", 0, err
	}

	engine := pdf.NewPDFCPU()
	wf := workflow.New(engine, splitter.New(engine), store.NewFileStore(store.NewMemoryKV()))
	if err := wf.LoadFile(ctx, models.NewUploadedFile(filepath.Base(opts.input), data)); err != nil {
		return "", 0, err
	}
	pageCount := wf.Snapshot().PageCount

	switch {
	case opts.keep != "":
		indices, err := workflow.ParsePageSpec(opts.keep, pageCount)
		if err != nil {
			return "", 0, err
		}
		if err := wf.Keep(indices); err != nil {
			return "", 0, err
		}
	case opts.drop != "":
		indices, err := workflow.ParsePageSpec(opts.drop, pageCount)
		if err != nil {
			return "", 0, err
		}
		for _, idx := range indices {
			if err := wf.TogglePage(idx); err != nil {
				return "", 0, err
			}
		}
	}

	if err := wf.Split(ctx); err != nil {
		return "", 0, err
	}
	result := wf.Result()
	blob, err := codec.Decode(result.Encoded, codec.ContentTypePDF)
	if err != nil {
		return "", 0, err
	}

	output := opts.output
	if output == "" {
		ext := filepath.Ext(opts.input)
		output = strings.TrimSuffix(opts.input, ext) + opts.suffix + ".pdf"
	}
	if err := os.WriteFile(output, blob.Bytes, 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", output, err)
	}
	return output, result.PageCount, nil
}
