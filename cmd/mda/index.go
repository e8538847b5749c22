package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/mda/internal/index"
)

func indexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Parse every configured export into the search index",
		Long:  `Re-imports each export found under dump_path. Rows from earlier runs of the same export are replaced.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.dumps()
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var total index.Stats
			for _, f := range files {
				fmt.Fprintf(os.Stderr, "Indexing %s...\n", f.Path)
				d, err := a.openDumpAt(f.Path)
				if err != nil {
					a.log.Warn("open export", zap.String("path", f.Path), zap.Error(err))
					total.Errors++
					continue
				}
				stats, err := index.IndexDump(db, d, a.log.Named("index"))
				d.Close()
				if err != nil {
					return fmt.Errorf("index %s: %w", f.Path, err)
				}
				fmt.Fprintf(os.Stderr, "  %s\n", stats)

				total.Conversations += stats.Conversations
				total.Messages += stats.Messages
				total.Attachments += stats.Attachments
				total.Replaced += stats.Replaced
				total.Errors += stats.Errors
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", total)
			return nil
		},
	}
}
