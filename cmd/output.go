package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in; run `pot login` first")

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// printNotice writes the latest notification, which is how the application reports the
// outcome of a write.
func printNotice(cmd *cobra.Command, app *app) error {
	toast, ok := app.store.Notify.Current()
	if !ok {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), toast.Message)
	return err
}

// requireSession restores the persisted session and fails when there is none.
func requireSession(cmd *cobra.Command, app *app) (domain.Session, error) {
	session := app.store.Session.Restore(cmd.Context())
	if !session.Authenticated() {
		return domain.Session{}, errNotSignedIn
	}
	return session, nil
}

func parseRoles(raw []string) []domain.Role {
	roles := make([]domain.Role, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
				roles = append(roles, domain.Role(trimmed))
			}
		}
	}
	return roles
}
