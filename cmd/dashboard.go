package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *app) *cobra.Command {
	var (
		asJSON  bool
		profile string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the organizer dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.store.Session.Restore(cmd.Context())

			var snapshot domain.DashboardSnapshot
			load := func(ctx context.Context) error {
				var err error
				snapshot, err = app.store.Cache.LoadDashboard(ctx)
				return err
			}
			if err := withSpinner(cmd, asJSON, "Loading dashboard...", load); err != nil {
				app.logger.WithError(err).Warn("dashboard load failed; showing fallback data")
				snapshot = app.store.Cache.Dashboard().Data
			}

			if profile != "" {
				matches, ok := snapshot.PerProfile[domain.ProfileID(profile)]
				if !ok {
					return fmt.Errorf("no ranked matches for profile %q", profile)
				}
				if asJSON {
					return writeJSON(cmd, matches)
				}
				writeMatches(cmd.OutOrStdout(), domain.ProfileID(profile), matches)
				return nil
			}

			if asJSON {
				return writeJSON(cmd, snapshot)
			}
			writeDashboard(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard as JSON")
	cmd.Flags().StringVar(&profile, "profile", "", "Only show ranked matches for this profile ID")

	cmd.AddCommand(newSegmentsCmd(app), newDrilldownCmd(app))

	return cmd
}

func writeDashboard(out io.Writer, snapshot domain.DashboardSnapshot) {
	overview := snapshot.Overview
	_, _ = fmt.Fprintf(out, "attendees: %d\nrecommended intros: %d\nactioned intros: %d\n",
		overview.AttendeeCount, overview.RecommendedIntroCount, overview.ActionedIntroCount)
	_, _ = fmt.Fprintf(out, "risk: low %d, medium %d, high %d\n",
		overview.RiskDistribution.Low, overview.RiskDistribution.Medium, overview.RiskDistribution.High)

	writePairs(out, "top intros", snapshot.TopIntroPairs)
	writePairs(out, "non-obvious intros", snapshot.NonObviousPairs)
}

func writePairs(out io.Writer, title string, pairs []domain.Pair) {
	_, _ = fmt.Fprintf(out, "\n%s:\n", title)
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(out, "  none")
		return
	}
	for _, pair := range pairs {
		status := pair.Action.Status
		if status == "" {
			status = domain.ActionPending
		}
		_, _ = fmt.Fprintf(out, "  %s -> %s\t%s -> %s\tscore %.2f\tconfidence %.2f\trisk %s\t%s\n",
			pair.FromID, pair.ToID, pair.FromName, pair.ToName, pair.Score, pair.Confidence, pair.RiskLevel, status)
	}
}

func writeMatches(out io.Writer, source domain.ProfileID, matches []domain.Match) {
	for _, match := range matches {
		status := match.Action.Status
		if status == "" {
			status = domain.ActionPending
		}
		_, _ = fmt.Fprintf(out, "#%d\t%s -> %s\t%s\tscore %.2f\trisk %s\t%s\n",
			match.PriorityRank, source, match.TargetID, match.TargetName, match.Score, match.RiskLevel, status)
		if match.Rationale != "" {
			_, _ = fmt.Fprintf(out, "\t%s\n", match.Rationale)
		}
	}
}

func newSegmentsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Show attendee counts per role and top interest tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			segments, err := app.store.Cache.LoadSegments(cmd.Context())
			if err != nil {
				app.logger.WithError(err).Warn("segments load failed")
			}
			if asJSON {
				return writeJSON(cmd, segments)
			}

			out := cmd.OutOrStdout()
			for _, role := range domain.Roles() {
				if count, ok := segments.Roles[string(role)]; ok {
					_, _ = fmt.Fprintf(out, "%s\t%d\n", role, count)
				}
			}
			for _, tag := range segments.TopInterestTags {
				_, _ = fmt.Fprintf(out, "#%s\t%d\n", tag.Tag, tag.Count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print segments as JSON")

	return cmd
}

func newDrilldownCmd(app *app) *cobra.Command {
	var (
		key    domain.PairKey
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "drilldown",
		Short: "Explain one recommendation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			drill, err := app.store.Dashboard.SelectPair(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("drilldown %s: %w", key, err)
			}
			if asJSON {
				return writeJSON(cmd, drill)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%s) -> %s (%s)\n", drill.FromProfile.Name, drill.FromProfile.Organization, drill.ToProfile.Name, drill.ToProfile.Organization)
			_, _ = fmt.Fprintf(out, "score %.2f\tfit %.2f\tcomplementarity %.2f\treadiness %.2f\tconfidence %.2f\n",
				drill.Match.Score, drill.Match.FitScore, drill.Match.ComplementarityScore, drill.Match.ReadinessScore, drill.Match.Confidence)
			_, _ = fmt.Fprintf(out, "risk: %s\n", drill.Match.RiskLevel)
			for _, reason := range drill.Match.RiskReasons {
				_, _ = fmt.Fprintf(out, "  - %s\n", reason)
			}
			if drill.Match.Rationale != "" {
				_, _ = fmt.Fprintln(out, drill.Match.Rationale)
			}
			return nil
		},
	}

	bindPairFlags(cmd, &key)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the drilldown as JSON")

	return cmd
}

func bindPairFlags(cmd *cobra.Command, key *domain.PairKey) {
	cmd.Flags().StringVar((*string)(&key.From), "from", "", "Source profile ID")
	cmd.Flags().StringVar((*string)(&key.To), "to", "", "Target profile ID")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func newActionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Record organizer decisions on recommended intros",
	}

	cmd.AddCommand(
		newActionSaveCmd(app),
		newQuickActionCmd(app, "approve", domain.ActionApproved),
		newQuickActionCmd(app, "reject", domain.ActionRejected),
	)

	return cmd
}

func newActionSaveCmd(app *app) *cobra.Command {
	var (
		key    domain.PairKey
		status string
		notes  string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a status and notes for a pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseActionStatus(status)
			if err != nil {
				return err
			}

			app.store.Session.Restore(cmd.Context())
			if _, err := app.store.Cache.LoadDashboard(cmd.Context()); err != nil {
				app.logger.WithError(err).Warn("dashboard load failed before save")
			}
			if _, err := app.store.Dashboard.Edit(key, parsed, notes); err != nil {
				return err
			}
			if err := app.store.Dashboard.Save(cmd.Context(), key); err != nil {
				return err
			}
			return printNotice(cmd, app)
		},
	}

	bindPairFlags(cmd, &key)
	cmd.Flags().StringVar(&status, "status", string(domain.ActionPending), "Status: pending, approved or rejected")
	cmd.Flags().StringVar(&notes, "notes", "", "Organizer notes")

	return cmd
}

func newQuickActionCmd(app *app, use string, status domain.ActionStatus) *cobra.Command {
	var key domain.PairKey

	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Mark a pair %s", status),
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.store.Session.Restore(cmd.Context())
			if err := app.store.Dashboard.QuickAction(cmd.Context(), key, status); err != nil {
				return fmt.Errorf("%s %s: %w", use, key, err)
			}
			return printNotice(cmd, app)
		},
	}

	bindPairFlags(cmd, &key)

	return cmd
}
