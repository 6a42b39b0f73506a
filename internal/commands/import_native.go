package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reminders/internal/service"
)

func addImportNative(topLevel *cobra.Command, ro *rootOptions) {
	io := service.ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import-native <reminders.json>",
		Short: "Import reminders exported from the platform reminders app.",
		Example: `
reminders import-native reminders.json --skip-completed --create-categories
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var records []service.NativeReminder
			if err := json.NewDecoder(f).Decode(&records); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Imports.ImportNative(ctx, records, io, a.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(color.Output, "imported %d, skipped %d, new categories %d\n",
				report.Imported, report.Skipped, report.CategoriesCreated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&io.StripDueDates, "strip-due-dates", false,
		"Drop due dates from imported reminders.")
	cmd.Flags().BoolVar(&io.SkipCompleted, "skip-completed", false,
		"Leave completed reminders behind.")
	cmd.Flags().BoolVar(&io.CreateMissingCategories, "create-categories", false,
		"Create a category for every unknown list name.")

	topLevel.AddCommand(cmd)
}
