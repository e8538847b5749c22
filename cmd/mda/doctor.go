package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/scan"
)

func doctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify exports, DB, FTS5, and show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg

			fmt.Println("=== Config ===")
			fmt.Printf("  Export:   %s\n", orNone(cfg.DumpPath))
			fmt.Printf("  Timezone: %s\n", orNone(cfg.Timezone))
			fmt.Printf("  Viewer:   %s\n", cfg.Viewer)

			fmt.Println("\n=== Exports ===")
			files, err := scan.FindDumps(cfg.DumpPath)
			switch {
			case err != nil:
				fmt.Printf("  scan error: %v\n", err)
			case len(files) == 0:
				fmt.Println("  none found (set dump_path or pass --dump)")
			default:
				for _, f := range files {
					fmt.Printf("  %s (%.1f MB)\n", f.Path, float64(f.Size)/1024/1024)
				}
				checkDump(a, files[0])
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'mda index' first)")
				return nil
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			convCount, err := db.ConversationCount()
			if err != nil {
				return fmt.Errorf("count conversations: %w", err)
			}
			msgCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			attCount, err := db.AttachmentCount()
			if err != nil {
				return fmt.Errorf("count attachments: %w", err)
			}

			fmt.Printf("  Conversations: %d\n", convCount)
			fmt.Printf("  Messages:      %d\n", msgCount)
			fmt.Printf("  Attachments:   %d\n", attCount)

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", float64(info.Size())/1024/1024)
			}
			return nil
		},
	}
}

// checkDump opens the newest export and counts conversations per type.
func checkDump(a *app, f scan.FileInfo) {
	d, err := a.openDumpAt(f.Path)
	if err != nil {
		fmt.Printf("  open error: %v\n", err)
		return
	}
	defer d.Close()

	counts := make(map[dump.ConversationType]int)
	for _, info := range d.Conversations() {
		counts[info.Type]++
	}
	fmt.Printf("\n  Newest: %s\n", d)
	for _, t := range dump.ConversationTypes {
		fmt.Printf("    %-17s %d\n", t+":", counts[t])
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
