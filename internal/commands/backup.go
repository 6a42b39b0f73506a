package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"reminders/internal/service"
)

type outputOptions struct {
	Path string
}

// create opens the output file, or stdout when no path was given.
func (o *outputOptions) create() (io.WriteCloser, error) {
	if o.Path == "" || o.Path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(o.Path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func addOutputArgs(cmd *cobra.Command, o *outputOptions) {
	cmd.Flags().StringVarP(&o.Path, "output", "o", "",
		"Write to this file instead of stdout.")
}

func addExport(topLevel *cobra.Command, ro *rootOptions) {
	oo := &outputOptions{}
	var native bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of every task and category.",
		Example: `
reminders export -o backup.json
reminders export --native -o reminders.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := oo.create()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := w.Close(); err == nil {
					err = cerr
				}
			}()

			if native {
				records, err := a.Imports.ExportNative(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			b, err := a.Backups.Export(ctx, a.Now())
			if err != nil {
				return err
			}
			return service.WriteBackup(w, b)
		},
	}
	addOutputArgs(cmd, oo)
	cmd.Flags().BoolVar(&native, "native", false,
		"Export tasks in the platform reminders format.")

	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore a JSON backup written by export.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			b, err := service.ReadBackup(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Backups.Import(ctx, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d tasks, %d categories, skipped %d\n",
				report.Tasks, report.Categories, report.Skipped)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
