package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <file.pdf>",
	Short: "Print the number of pages in a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := pdf.NewPDFCPU().Load(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.PageCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
