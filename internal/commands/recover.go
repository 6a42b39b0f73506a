package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reminders/internal/printer"
)

func addRecover(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Restore the next occurrence of repeating tasks that lost it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.Now()
			created, err := a.Tasks.RecoverMissingOccurrences(ctx, now)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(color.Output, "nothing to recover")
				return nil
			}
			printer.New(color.Output, now, a.Tasks.Options()).Created(created)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
