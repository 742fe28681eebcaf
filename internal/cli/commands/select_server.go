package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/cli/serverselect"
	"github.com/branchd-dev/memberctl/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ memberctl select-server                             # Interactive selection
  $ memberctl select-server https://portal.example.com  # Select by URL
  $ memberctl select-server production                  # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(urlOrAlias, opts...)
		},
	}

	return cmd
}

func runSelectServer(urlOrAlias string, opts ...Option) error {
	o := buildOptions(opts)

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'memberctl init <url>' to create a configuration file", err)
	}

	var server *config.Server

	if urlOrAlias != "" {
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
		if err != nil {
			return err
		}
	} else {
		// Show interactive selection
		server, err = serverselect.PromptServerSelection(cfg)
		if err != nil {
			return err
		}
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	o.printf("Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
