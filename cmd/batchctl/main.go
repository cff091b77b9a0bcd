package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mohammadpnp/resumebatch/internal/interfaces/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		var cliErr *cli.CLIError
		if errors.As(err, &cliErr) {
			fmt.Fprintln(os.Stderr, "Error:", cliErr.Error())
			os.Exit(cliErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
