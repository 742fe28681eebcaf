package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...Option) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a member portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runLogin(cmd.Context(), email, password, with(opts, WithServerAlias(alias))...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set MEMBERCTL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MEMBERCTL_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, email, password string, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("MEMBERCTL_EMAIL")
	}
	if password == "" {
		password = os.Getenv("MEMBERCTL_PASSWORD")
	}
	if email == "" {
		email = defaultEmail()
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or MEMBERCTL_EMAIL env var)")
	}

	m, release, err := o.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer release()

	// Prompt for password if not provided via flag or env var
	if password == "" {
		password, err = o.prompt("Password")
		if err != nil {
			if errors.Is(err, ErrNonInteractive) {
				return fmt.Errorf("password is required in non-interactive mode (use --password flag or MEMBERCTL_PASSWORD env var)")
			}
			return err
		}
	}

	o.printf("Logging in to %s...\n", o.serverLabel())

	res := m.Login(ctx, email, password)
	if !res.Success {
		return fmt.Errorf("login failed: %s", res.Message)
	}

	if err := userconfig.SetLastEmail(email); err != nil {
		o.logger.Debug().Err(err).Msg("Failed to remember login email")
	}

	user := m.CurrentUser()
	o.println("✓ Login successful!")
	o.printf("  User: %s (%s)\n", user.String("name"), user.String("email"))
	if m.IsAdmin() {
		o.println("  Role: Staff (admin)")
	}

	return nil
}

// defaultEmail falls back to the project default, then the last login
func defaultEmail() string {
	if cfg, err := config.LoadFromCurrentDir(); err == nil && cfg.Defaults.Email != "" {
		return cfg.Defaults.Email
	}
	if ucfg, err := userconfig.Load(); err == nil {
		return ucfg.LastEmail
	}
	return ""
}
