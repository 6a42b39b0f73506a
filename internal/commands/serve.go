package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func addServe(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the scheduled digests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := ro.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}

	topLevel.AddCommand(cmd)
}
