package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mda/internal/dump"
	"github.com/Zuo-Peng/mda/internal/extract"
)

func openCmd(a *app) *cobra.Command {
	var viewer string

	cmd := &cobra.Command{
		Use:   "open <name|id> <uri>",
		Short: "Open an attachment in the configured viewer",
		Long:  `Writes the attachment to a temporary file and runs the viewer on it. The uri may be the full archive path or just its file name.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, conv, err := a.openConversation(args[0])
			if err != nil {
				return err
			}
			defer d.Close()

			att := findAttachment(conv, args[1])
			if att == nil {
				return fmt.Errorf("attachment %q in %s: %w", args[1], conv.Name, dump.ErrNotFound)
			}

			if viewer == "" {
				viewer = a.cfg.Viewer
			}
			path, err := extract.Open(att, viewer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Opened %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&viewer, "viewer", "", "Viewer command (default from config)")

	return cmd
}

func findAttachment(conv *dump.Conversation, uri string) *dump.Attachment {
	for _, a := range conv.Attachments.All {
		if a.URI == uri || strings.HasSuffix(a.URI, "/"+uri) {
			return a
		}
	}
	return nil
}
