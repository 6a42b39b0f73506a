package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reminders/internal/printer"
	"reminders/internal/service"
)

func requireID(args []string) error {
	if len(args) < 1 {
		return errors.New("requires a task id or id prefix")
	}
	return nil
}

func addComplete(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:     "complete",
		Aliases: []string{"done"},
		Short:   "Complete a task. Repeating tasks roll over to their next date.",
		Example: `
reminders complete <task id>
`,
		Args: func(_ *cobra.Command, args []string) error {
			return requireID(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.Tasks.Resolve(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			now := a.Now()
			res, err := a.Tasks.Complete(ctx, task.ID, now)
			if err != nil {
				return err
			}

			fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("completed"), res.Task.Title)
			if res.Next != nil {
				fmt.Fprintf(color.Output, "next %s due %s\n", printer.ShortID(res.Next.ID), service.FormatDue(res.Next, now))
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addCheckIn(topLevel *cobra.Command, ro *rootOptions) {
	var clearToday bool

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check in a habit for today.",
		Example: `
reminders checkin <habit id>
reminders checkin --clear <habit id>
`,
		Args: func(_ *cobra.Command, args []string) error {
			return requireID(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.Tasks.Resolve(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			now := a.Now()
			if clearToday {
				task, err = a.Tasks.ClearCheckIn(ctx, task.ID, now)
			} else {
				task, err = a.Tasks.CheckIn(ctx, task.ID, now)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(color.Output, "%s streak %d\n", task.Title, task.CurrentStreak(now))
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearToday, "clear", false, "Remove today's check-in instead.")

	topLevel.AddCommand(cmd)
}
