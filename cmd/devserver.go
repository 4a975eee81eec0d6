package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bnema/pot-cli/internal/fakeapi"
	"github.com/spf13/cobra"
)

const devServerShutdownTimeout = 5 * time.Second

func newDevServerCmd(app *app) *cobra.Command {
	var (
		addr   string
		secret string
	)

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Serve an in-memory matchmaking API with seeded attendees",
		Long:  "dev-server runs a local implementation of the matchmaking API with five seeded attendee profiles and ranked recommendations. Point api.base_url at it to try pot without a deployment.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fake := fakeapi.New(fakeapi.WithSecret(secret), fakeapi.WithLogger(app.logger))

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			server := &http.Server{
				Handler:           fake.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s (ctrl+c to stop)\n", listener.Addr())

			errCh := make(chan error, 1)
			go func() { errCh <- server.Serve(listener) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), devServerShutdownTimeout)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().StringVar(&secret, "secret", "dev-only-change-me", "HS256 secret used to sign session tokens")

	return cmd
}
