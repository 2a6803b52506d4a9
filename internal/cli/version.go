package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the asig release version.
const Version = "0.1.0"

const modulePath = "github.com/sealmit/asig"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the asig version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "asig v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
