package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var route string

	rootCmd := &cobra.Command{
		Use:           "pot",
		Short:         "Proof of Talk (pot): matchmaking from the terminal",
		Long:          "pot opens an interactive terminal client for the Proof of Talk matchmaking service: browse attendees, review ranked intros, record organizer decisions and message your matches. Subcommands expose the same operations for scripting.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		rootCmd.AddCommand(newVersionCmd())
		return rootCmd
	}

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return app.runTUI(cmd.Context(), app.store, route)
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		app.store.Close()
		_ = app.logFile.Close()
	}
	rootCmd.Flags().StringVar(&route, "route", "/", "Initial view: /, /auth, /attendees, /dashboard or /messages")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newProfileCmd(app),
		newDashboardCmd(app),
		newActionCmd(app),
		newAttendeesCmd(app),
		newEnrichmentCmd(app),
		newChatCmd(app),
		newAskCmd(app),
		newDevServerCmd(app),
	)

	return rootCmd
}
