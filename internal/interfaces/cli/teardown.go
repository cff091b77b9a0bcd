package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newTeardownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "teardown <batch-id>",
		Short: "Delete a batch's items, record, and uploaded files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(engineURL)
			path := "/batches/" + args[0] + "?owner_id=" + url.QueryEscape(ownerID)
			if err := c.delete(path, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
