package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/memberctl/internal/cli/commands"
	"github.com/branchd-dev/memberctl/internal/config"
	"github.com/branchd-dev/memberctl/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the memberctl command tree
func NewRootCmd(cfg *config.Config, extra ...commands.Option) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "memberctl",
		Short: "memberctl - Member portal command-line client",
		Long: `memberctl signs you in to a member portal and manages your account.

The credential is kept in the OS keychain (or a local SQLite file) per server,
and every command re-checks it with the server before use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.Init("debug", cfg.Logging.Format)
			}
		},
	}

	rootCmd.PersistentFlags().String("server", "", "Server alias or URL from memberctl.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP requests to stderr")

	opts := append([]commands.Option{
		commands.WithRuntimeConfig(cfg),
		commands.WithVersion(version),
	}, extra...)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "memberctl version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd(opts...))
	rootCmd.AddCommand(commands.NewSelectServerCmd(opts...))
	rootCmd.AddCommand(commands.NewLoginCmd(opts...))
	rootCmd.AddCommand(commands.NewRegisterCmd(opts...))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts...))
	rootCmd.AddCommand(commands.NewWhoamiCmd(opts...))
	rootCmd.AddCommand(commands.NewProfileCmd(opts...))
	rootCmd.AddCommand(commands.NewPasswordCmd(opts...))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context, cfg *config.Config) error {
	if err := NewRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
