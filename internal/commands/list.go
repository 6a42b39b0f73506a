package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reminders/internal/model"
	"reminders/internal/planner"
	"reminders/internal/printer"
)

type listOptions struct {
	Bucket string
}

func addList(topLevel *cobra.Command, ro *rootOptions) {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks grouped by what needs attention.",
		Example: `
reminders list
reminders list --bucket habits
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.Now()
			b, err := a.Tasks.Buckets(ctx, now)
			if err != nil {
				return err
			}

			p := printer.New(color.Output, now, a.Tasks.Options())
			if lo.Bucket == "" {
				p.Buckets(b)
				return nil
			}
			tasks, title, err := pickBucket(b, lo.Bucket)
			if err != nil {
				return err
			}
			p.Tasks(title, tasks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lo.Bucket, "bucket", "b", "",
		"Only show one bucket: attention, habits, scheduled, recurring or completed.")

	topLevel.AddCommand(cmd)
}

func pickBucket(b planner.Buckets, name string) ([]*model.Task, string, error) {
	switch name {
	case "attention":
		return b.NeedsAttention, "Needs attention", nil
	case "habits":
		return b.Habits, "Habits", nil
	case "scheduled":
		return b.Scheduled, "Scheduled", nil
	case "recurring":
		return b.Recurring, "Recurring", nil
	case "completed":
		return b.Completed, "Completed", nil
	}
	return nil, "", fmt.Errorf("unknown bucket %q", name)
}
