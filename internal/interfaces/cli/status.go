package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <batch-id>",
		Short: "Print a batch's snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(engineURL)
			var raw json.RawMessage
			path := "/batches/" + args[0] + "?owner_id=" + url.QueryEscape(ownerID)
			if err := c.getJSON(path, &raw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}
