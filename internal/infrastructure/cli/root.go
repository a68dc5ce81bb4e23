package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsbay/caretaker/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose, NewConsoleReporter(os.Stdout))
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "caretaker",
		Short: "Caretaker - operator toolkit for a managed AI-employee installation",
		Long:  "Caretaker keeps a per-client AI-employee installation healthy: it checks the graph-database container, the HTTP gateway, disk capacity and stale locks, heals what it can, and records every attempt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newHealCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
