package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"reminders/internal/app"
	"reminders/internal/config"
)

const configEnv = "REMINDERS_CONFIG"

// rootOptions are flags shared by every command.
type rootOptions struct {
	ConfigPath string
}

func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminders, habits and repeating tasks with a daily digest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", os.Getenv(configEnv),
		"Path to a TOML config file. Defaults to $"+configEnv+".")

	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addServe(topLevel, ro)
	addList(topLevel, ro)
	addComplete(topLevel, ro)
	addCheckIn(topLevel, ro)
	addRecover(topLevel, ro)
	addExport(topLevel, ro)
	addImport(topLevel, ro)
	addImportNative(topLevel, ro)
}

// open loads the config and wires the app. Logs go to stderr so command
// output stays clean.
func (ro *rootOptions) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, os.Stderr)
}
