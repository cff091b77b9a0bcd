package cli

import (
	"github.com/spf13/cobra"
)

var (
	engineURL string
	ownerID   string
)

// NewRootCommand builds the batchctl root command, following the
// teacher-adjacent codefang CLI's cobra.Command wiring: one
// PersistentFlags block on the root, one AddCommand call per verb.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "batchctl",
		Short:         "Control surface for the resume batch engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&engineURL, "engine-url", "http://localhost:8080", "base URL of the running engine")
	root.PersistentFlags().StringVar(&ownerID, "owner-id", "", "caller identity used for authorization")

	root.AddCommand(
		newCreateCommand(),
		newControlCommand("pause"),
		newControlCommand("resume"),
		newControlCommand("cancel"),
		newStatusCommand(),
		newListItemsCommand(),
		newTeardownCommand(),
	)
	return root
}
