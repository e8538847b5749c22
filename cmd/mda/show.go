package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/index"
	"github.com/Zuo-Peng/mda/internal/render"
)

func showCmd(a *app) *cobra.Command {
	var hit, context, limit int
	var query, self string
	var indexed bool

	cmd := &cobra.Command{
		Use:   "show <name|id>",
		Short: "Print a conversation",
		Long: `Prints a conversation from the newest export, or from whichever indexed
export has it. With --indexed the conversation is read from the index alone, so
the export need not be present; the ref may then also be a full conversation
key (export path!conversation path). Indexed times are UTC.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := render.Options{
				Hit:     hit,
				Context: context,
				Limit:   limit,
				Width:   terminalWidth(),
				Query:   query,
				Self:    self,
			}

			var out string
			if indexed {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				out, err = showIndexed(db, args[0], opts)
				if err != nil {
					return err
				}
			} else {
				d, conv, err := a.openConversation(args[0])
				if err != nil {
					return err
				}
				defer d.Close()
				out, _ = render.Conversation(conv, opts)
			}
			if !stdoutIsTerminal() {
				out = render.StripANSI(out)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message index to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Without --hit, show only the last N messages")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().StringVar(&self, "self", "", "Your own sender name, drawn in a second color")
	cmd.Flags().BoolVar(&indexed, "indexed", false, "Read the conversation from the index instead of the export")

	return cmd
}

func showIndexed(db *index.DB, ref string, opts render.Options) (string, error) {
	c, err := indexedConversation(db, ref)
	if err != nil {
		return "", err
	}
	msgs, err := db.GetMessages(c.Key)
	if err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}
	atts, err := db.GetAttachments(c.Key)
	if err != nil {
		return "", fmt.Errorf("attachments: %w", err)
	}
	out, _ := render.Indexed(c, msgs, atts, opts)
	return out, nil
}
