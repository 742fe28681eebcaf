package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or update your member profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your member profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runWhoami(cmd.Context(), false, with(opts, WithServerAlias(alias))...)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set key=value [key=value...]",
		Short: "Update profile fields",
		Example: `  $ memberctl profile set name="Ada Lovelace"
  $ memberctl profile set phone=555-0100 city=London`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runProfileSet(cmd.Context(), args, with(opts, WithServerAlias(alias))...)
		},
	})

	return cmd
}

func runProfileSet(ctx context.Context, args []string, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	updates, err := parseFields(args)
	if err != nil {
		return err
	}

	m, release, err := requireAuthenticated(ctx, o)
	if err != nil {
		return err
	}
	defer release()

	res := m.UpdateProfile(ctx, updates)
	if !res.Success {
		return fmt.Errorf("profile update failed: %s", res.Message)
	}

	o.println("✓ Profile updated")
	printProfile(o, m.CurrentUser())
	return nil
}
