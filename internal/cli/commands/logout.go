package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential for the selected server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runLogout(cmd.Context(), with(opts, WithServerAlias(alias))...)
		},
	}
}

func runLogout(ctx context.Context, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	// No identity check needed to forget a credential
	m, release, err := o.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer release()

	wasAuthenticated := m.IsAuthenticated()
	m.Logout()

	if wasAuthenticated {
		o.printf("✓ Logged out of %s\n", o.serverLabel())
	} else {
		o.printf("Not logged in to %s\n", o.serverLabel())
	}
	return nil
}
