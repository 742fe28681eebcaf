package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type passwordInput struct {
	current string
	next    string
}

// NewPasswordCmd creates the password command
func NewPasswordCmd(opts ...Option) *cobra.Command {
	var in passwordInput

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runPassword(cmd.Context(), in, with(opts, WithServerAlias(alias))...)
		},
	}

	cmd.Flags().StringVar(&in.current, "current", "", "Current password (will prompt if not provided)")
	cmd.Flags().StringVar(&in.next, "new", "", "New password (will prompt if not provided)")

	return cmd
}

func runPassword(ctx context.Context, in passwordInput, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	m, release, err := requireAuthenticated(ctx, o)
	if err != nil {
		return err
	}
	defer release()

	current := in.current
	if current == "" {
		current, err = o.prompt("Current password")
		if err != nil {
			if errors.Is(err, ErrNonInteractive) {
				return fmt.Errorf("--current and --new are required in non-interactive mode")
			}
			return err
		}
	}

	next := in.next
	if next == "" {
		next, err = promptNewPassword(o, "New password")
		if err != nil {
			return err
		}
	}

	res := m.ChangePassword(ctx, map[string]any{
		"currentPassword": current,
		"newPassword":     next,
	})
	if !res.Success {
		return fmt.Errorf("password change failed: %s", res.Message)
	}

	o.println("✓ Password changed")
	return nil
}
