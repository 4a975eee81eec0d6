package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	potapp "github.com/bnema/pot-cli/internal/app"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAttendeesCmd(app *app) *cobra.Command {
	var (
		search string
		roles  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "attendees",
		Short: "Search the attendee directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.AttendeeFilter{Search: search, Roles: parseRoles(roles)}
			directory, err := app.store.Attendees.SetFilter(cmd.Context(), filter)
			if err != nil {
				app.logger.WithError(err).Warn("attendee directory load failed; showing sample data")
			}
			if asJSON {
				return writeJSON(cmd, directory)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "attendees: %d\n", directory.Count)
			for _, attendee := range directory.Attendees {
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%.2f\n",
					attendee.ProfileID, attendee.Name, attendee.Role,
					strings.Join(nonEmpty(attendee.Title, attendee.Organization), " @ "),
					attendee.Enrichment.SourceConfidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match name, title, organization or bio")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Only show these roles (repeat or comma separate)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the directory as JSON")

	return cmd
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out
}

func newEnrichmentCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrichment",
		Short: "Inspect and refresh profile enrichment",
	}

	cmd.AddCommand(newEnrichmentListCmd(app), newEnrichmentRefreshCmd(app))

	return cmd
}

func newEnrichmentListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List source confidence per profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := app.store.Cache.LoadEnrichment(cmd.Context())
			if err != nil {
				return fmt.Errorf("load enrichment: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, records)
			}
			for _, record := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\n", record.ProfileID, record.SourceConfidence)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	return cmd
}

func newEnrichmentRefreshCmd(app *app) *cobra.Command {
	var (
		profile    string
		connectors []string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-run enrichment for one profile, or everyone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("connector") {
				known := potapp.Connectors()
				for _, connector := range connectors {
					if !slices.Contains(known, connector) {
						return fmt.Errorf("unknown connector %q (known: %s)", connector, strings.Join(known, ", "))
					}
				}
				for _, connector := range app.store.Attendees.ActiveConnectors() {
					app.store.Attendees.ToggleConnector(connector)
				}
				for _, connector := range connectors {
					app.store.Attendees.ToggleConnector(connector)
				}
			}

			refresh := func(ctx context.Context) error {
				return app.store.Attendees.RefreshEnrichment(ctx, domain.ProfileID(profile))
			}
			if err := withSpinner(cmd, false, "Refreshing enrichment...", refresh); err != nil {
				return fmt.Errorf("refresh enrichment: %w", err)
			}
			return printNotice(cmd, app)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID; empty refreshes everyone")
	cmd.Flags().StringSliceVar(&connectors, "connector", nil, "Connectors to use: "+strings.Join(potapp.Connectors(), ", "))

	return cmd
}
