package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type controlBatchRequest struct {
	OwnerID string `json:"owner_id"`
	Action  string `json:"action"`
}

type controlBatchResult struct {
	Result string `json:"result"`
}

// newControlCommand builds pause/resume/cancel as three thin
// wrappers over the same control_batch operation, matching spec.md
// §6's control_batch(owner_id, batch_id, {pause|resume|cancel}).
func newControlCommand(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <batch-id>",
		Short: fmt.Sprintf("%s a batch", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(engineURL)
			var result controlBatchResult
			if err := c.postJSON("/batches/"+args[0]+"/control", controlBatchRequest{
				OwnerID: ownerID,
				Action:  action,
			}, &result); err != nil {
				return err
			}
			if result.Result == "not_applicable" {
				return &CLIError{Code: ExitIllegalTransition, Message: action + ": not applicable in the batch's current state"}
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Result)
			return nil
		},
	}
}
