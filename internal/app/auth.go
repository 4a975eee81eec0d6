package app

import (
	"context"
	"errors"

	"github.com/bnema/pot-cli/internal/adapters/httpapi"
	"github.com/bnema/pot-cli/internal/domain"
)

// failureMessage picks the text shown to the user: local validation first, then the
// server's detail, then fallback.
func failureMessage(err error, fallback string) string {
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		return httpapi.Message(err, "Sign in required")
	}
	return httpapi.Message(err, fallback)
}

// AuthView drives the sign-in, registration and profile forms. It issues no requests
// on entry.
type AuthView struct {
	app *App
}

func (*AuthView) Enter(context.Context) func(context.Context) { return nil }
func (*AuthView) Exit()                                      {}

func (v *AuthView) Login(ctx context.Context, email, password string) error {
	if _, err := v.app.Session.Login(ctx, email, password); err != nil {
		v.app.Notify.Show(failureMessage(err, "Sign in failed"), true)
		return err
	}
	v.app.Notify.Show("Signed in successfully.", false)
	return nil
}

func (v *AuthView) Register(ctx context.Context, reg domain.Registration) error {
	if _, err := v.app.Session.Register(ctx, reg); err != nil {
		v.app.Notify.Show(failureMessage(err, "Registration failed"), true)
		return err
	}
	v.app.Notify.Show("Account created and signed in.", false)
	return nil
}

func (v *AuthView) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if _, err := v.app.Session.UpdateProfile(ctx, update); err != nil {
		v.app.Notify.Show(failureMessage(err, "Profile update failed"), true)
		return err
	}
	v.app.Notify.Show("Profile updated.", false)
	return nil
}

func (v *AuthView) Logout(ctx context.Context) {
	v.app.Session.Logout(ctx)
	v.app.Notify.Show("Signed out.", false)
}

// ProfileDraft prefills the profile form from the signed-in user.
func (v *AuthView) ProfileDraft() domain.ProfileFields {
	current := v.app.Session.Current()
	if current.User == nil {
		return domain.ProfileFields{Role: domain.RoleAttendee}
	}

	user := current.User
	role := user.Role
	if role == "" {
		role = domain.RoleAttendee
	}
	return domain.ProfileFields{
		FullName:     user.FullName,
		Title:        user.Title,
		Organization: user.Organization,
		Role:         role,
		Website:      user.Website,
		Bio:          user.Bio,
		LinkedIn:     user.SocialLinks["linkedin"],
		Focus:        user.Focus,
		LookingFor:   user.LookingFor,
	}
}
