package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/extract"
)

func extractCmd(a *app) *cobra.Command {
	var out, category string

	cmd := &cobra.Command{
		Use:   "extract <name|id>",
		Short: "Copy a conversation's attachments out of the export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, conv, err := a.openConversation(args[0])
			if err != nil {
				return err
			}
			defer d.Close()

			stats, err := extract.Attachments(conv, out, extract.Options{Category: dump.Category(category)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d files (%d bytes) to %s\n", stats.Files, stats.Bytes, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", ".", "Destination directory")
	cmd.Flags().StringVar(&category, "category", "", "Only this category (photos/videos/gifs/files/audio)")

	return cmd
}
