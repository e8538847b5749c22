package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/index"
	"github.com/Zuo-Peng/mda/internal/search"
	"github.com/Zuo-Peng/mda/internal/tui"
)

func listCmd(a *app) *cobra.Command {
	var typ, filter, since string
	var limit int
	var indexed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse the conversations in the export",
		Long: `Opens a TUI panel listing every conversation in the newest export. Type to
filter by name or type; Enter copies the conversation id. When stdout is not a
terminal, prints TSV instead: id, type, name, path.

With --indexed, lists the conversations of every indexed export, most recently
active first, as TSV: id, type, name, last message time, export path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexed {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return listIndexed(cmd.OutOrStdout(), db, search.Options{Type: typ, Since: since, Limit: limit})
			}

			d, err := a.openDump()
			if err != nil {
				return err
			}
			defer d.Close()

			if stdoutIsTerminal() {
				return tui.RunList(d, filter)
			}

			for _, info := range d.Conversations() {
				if typ != "" && string(info.Type) != typ {
					continue
				}
				if filter != "" && !strings.Contains(strings.ToLower(info.Name), strings.ToLower(filter)) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", info.ID, info.Type, info.Name, info.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Filter by type ("+typeNames()+")")
	cmd.Flags().StringVar(&filter, "filter", "", "Initial name filter")
	cmd.Flags().BoolVar(&indexed, "indexed", false, "List indexed conversations across all exports")
	cmd.Flags().StringVar(&since, "since", "", "With --indexed, only conversations active since (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "With --indexed, max conversations")

	return cmd
}

func listIndexed(w io.Writer, db *index.DB, opts search.Options) error {
	results, err := search.ListAll(db, opts)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ConvID, r.Type, r.Name, r.Ts, r.DumpPath)
	}
	return nil
}

func typeNames() string {
	names := make([]string, 0, len(dump.ConversationTypes))
	for _, t := range dump.ConversationTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, "/")
}
