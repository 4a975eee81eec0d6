package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/pot-cli/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Write(app.cfg, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return fmt.Errorf("%w (use --force to overwrite)", err)
				}
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", app.cfg.Path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.cfg
			out := cmd.OutOrStdout()
			for _, line := range [][2]string{
				{"config", cfg.Path},
				{config.KeyAPIBaseURL, cfg.APIBaseURL},
				{config.KeyAPITimeout, cfg.APITimeout.String()},
				{config.KeyChatPollInterval, cfg.ChatPollInterval.String()},
				{config.KeyChatPeerPollInterval, cfg.PeerPollInterval.String()},
				{config.KeyNotifyDuration, cfg.NotifyDuration.String()},
				{config.KeyLogLevel, cfg.LogLevel},
				{config.KeyLogFormat, cfg.LogFormat},
				{config.KeyLogFile, cfg.LogFile},
				{config.KeyPreserveUnsavedEdits, fmt.Sprintf("%t", cfg.PreserveUnsavedEdits)},
				{config.KeyTokenStore, cfg.TokenStore},
			} {
				if _, err := fmt.Fprintf(out, "%s = %s\n", line[0], line[1]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
