package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/sqlprep/mimetype"
)

var mimeCmd = &cobra.Command{
	Use:   "mime EXT...",
	Short: "Print the MIME type for each file extension",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, ext := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ext, mimetype.Lookup(ext))
		}
		return nil
	},
}
