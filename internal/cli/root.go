package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the dscommercectl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dscommercectl",
		Short:         "Developer CLI for the DSCommerce API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(cmdHashPassword(), cmdToken())
	return root
}

func Execute() error { return NewRootCmd().Execute() }
