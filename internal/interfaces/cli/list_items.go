package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newListItemsCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list-items <batch-id>",
		Short: "List a batch's items as JSON, optionally filtered by status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(engineURL)
			q := url.Values{}
			q.Set("owner_id", ownerID)
			if status != "" {
				q.Set("status", status)
			}
			var raw json.RawMessage
			if err := c.getJSON("/batches/"+args[0]+"/items?"+q.Encode(), &raw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by item status (pending|running|complete|failed|cancelled)")
	return cmd
}
