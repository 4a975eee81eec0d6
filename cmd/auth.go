package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/spf13/cobra"
)

func readPassword(cmd *cobra.Command, password string, fromStdin bool) (string, error) {
	if !fromStdin {
		if password == "" {
			return "", errors.New("a password is required: pass --password or --password-stdin")
		}
		return password, nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password from stdin is empty")
	}
	return line, nil
}

func newLoginCmd(app *app) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readPassword(cmd, password, passwordStdin)
			if err != nil {
				return err
			}
			if err := app.store.Auth.Login(cmd.Context(), email, secret); err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			return printNotice(cmd, app)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var (
		reg           domain.Registration
		role          string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readPassword(cmd, password, passwordStdin)
			if err != nil {
				return err
			}
			reg.Password = secret
			reg.Profile.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))

			if err := app.store.Auth.Register(cmd.Context(), reg); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			return printNotice(cmd, app)
		},
	}

	cmd.Flags().StringVar(&reg.Profile.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&reg.Profile.Title, "title", "", "Job title")
	cmd.Flags().StringVar(&reg.Profile.Organization, "organization", "", "Organization")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAttendee), "Role: attendee, vip, speaker, sponsor or delegate")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.store.Session.Restore(cmd.Context())
			app.store.Auth.Logout(cmd.Context())
			return printNotice(cmd, app)
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := requireSession(cmd, app)
			if err != nil {
				return err
			}
			user := session.User
			if asJSON {
				return writeJSON(cmd, user)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s <%s>\n", user.FullName, user.Email)
			_, _ = fmt.Fprintf(out, "id: %s\nrole: %s\n", user.ID, user.Role)
			if user.Title != "" || user.Organization != "" {
				_, _ = fmt.Fprintf(out, "title: %s\norganization: %s\n", user.Title, user.Organization)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the user as JSON")

	return cmd
}

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your attendee profile",
	}

	cmd.AddCommand(newProfileSetCmd(app))

	return cmd
}

func newProfileSetCmd(app *app) *cobra.Command {
	var (
		fields domain.ProfileFields
		role   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields; unset flags keep their current value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireSession(cmd, app); err != nil {
				return err
			}

			draft := app.store.Auth.ProfileDraft()
			flags := cmd.Flags()
			if flags.Changed("name") {
				draft.FullName = fields.FullName
			}
			if flags.Changed("title") {
				draft.Title = fields.Title
			}
			if flags.Changed("organization") {
				draft.Organization = fields.Organization
			}
			if flags.Changed("role") {
				draft.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))
			}
			if flags.Changed("website") {
				draft.Website = fields.Website
			}
			if flags.Changed("linkedin") {
				draft.LinkedIn = fields.LinkedIn
			}
			if flags.Changed("bio") {
				draft.Bio = fields.Bio
			}
			if flags.Changed("focus") {
				draft.Focus = fields.Focus
			}
			if flags.Changed("looking-for") {
				draft.LookingFor = fields.LookingFor
			}

			if err := app.store.Auth.UpdateProfile(cmd.Context(), domain.ProfileUpdate{Profile: draft}); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			return printNotice(cmd, app)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fields.FullName, "name", "", "Full name")
	flags.StringVar(&fields.Title, "title", "", "Job title")
	flags.StringVar(&fields.Organization, "organization", "", "Organization")
	flags.StringVar(&role, "role", "", "Role: attendee, vip, speaker, sponsor or delegate")
	flags.StringVar(&fields.Website, "website", "", "Website URL")
	flags.StringVar(&fields.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	flags.StringVar(&fields.Bio, "bio", "", "Short bio")
	flags.StringSliceVar(&fields.Focus, "focus", nil, "Focus areas (repeat or comma separate)")
	flags.StringSliceVar(&fields.LookingFor, "looking-for", nil, "What you are looking for (repeat or comma separate)")

	return cmd
}
