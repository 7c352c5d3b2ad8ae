package exporter

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "exporter",
		Short: "Manages the export of document collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("welcome to scribe exporter!")
			return nil
		},
	}
	cmd.AddCommand(newInvokeCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCollectionsCommand())
	return cmd
}
