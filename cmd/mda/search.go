package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/search"
	"github.com/Zuo-Peng/mda/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorMagenta = "\033[1;35m"
	sColorDim     = "\033[2m"
)

func colorizeType(typ string) string {
	switch typ {
	case "inbox":
		return sColorBlue + typ + sColorReset
	case "message_requests":
		return sColorGreen + typ + sColorReset
	case "archived_threads":
		return sColorMagenta + typ + sColorReset
	default:
		return typ
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd(a *app) *cobra.Command {
	var typ, sender, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5. Run 'mda index' first. Output is TSV for fzf integration:
  conversation id, message index, time, type, name, sender, snippet

Example shell function:
  mdaf() {
    mda search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'mda show {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if n, err := db.MessageCount(); err == nil && n == 0 {
				fmt.Fprintln(os.Stderr, "Index is empty, run 'mda index' first.")
				return nil
			}

			opts := search.Options{
				Type:   typ,
				Sender: sender,
				Since:  since,
				Limit:  limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if stdoutIsTerminal() {
				d, err := a.openDump()
				if err != nil {
					return err
				}
				defer d.Close()
				return tui.Run(d, db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				// first two fields (id, message index) stay plain for fzf {1} {2}
				fmt.Fprintf(out, "%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.ConvID,
					r.MsgIdx,
					sColorDim, r.Ts, sColorReset,
					colorizeType(r.Type),
					r.Name,
					clean(r.Sender),
					colorizeSnippet(clean(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Filter by conversation type ("+typeNames()+")")
	cmd.Flags().StringVar(&sender, "sender", "", "Filter by sender name")
	cmd.Flags().StringVar(&since, "since", "", "Filter messages sent since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
