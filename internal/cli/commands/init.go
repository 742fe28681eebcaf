package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/branchd-dev/memberctl/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd(opts ...Option) *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <server-url>",
		Short: "Add a member portal server to memberctl.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(dir, args[0], alias, opts...)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Name for the server (default server-N)")

	return cmd
}

func runInit(dir, serverURL, alias string, opts ...Option) error {
	o := buildOptions(opts)

	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if err := validator.New().Var(serverURL, "required,http_url"); err != nil {
		return fmt.Errorf("invalid server URL %q: must be an http(s) URL", serverURL)
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	cfg := config.DefaultConfig()
	isNewConfig := true

	// Check if config already exists
	for _, name := range config.ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			loaded, err := config.Load(candidate)
			if err != nil {
				return fmt.Errorf("failed to load existing config: %w", err)
			}
			cfg, configPath, isNewConfig = loaded, candidate, false
			o.printf("Found existing %s\n", name)
			break
		}
	}

	if existing, err := cfg.GetServerByURL(serverURL); err == nil {
		o.printf("Server %s already exists in %s as %q\n", serverURL, filepath.Base(configPath), existing.Alias)
		return nil
	}

	if alias == "" {
		alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
	}
	if _, err := cfg.GetServerByAlias(alias); err == nil {
		return fmt.Errorf("alias %q is already used in %s", alias, filepath.Base(configPath))
	}

	cfg.AddServer(config.Server{URL: serverURL, Alias: alias})
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		o.printf("✓ Created ./%s with server %s (%s)\n", filepath.Base(configPath), serverURL, alias)
	} else {
		o.printf("✓ Added server %s (%s) to ./%s\n", serverURL, alias, filepath.Base(configPath))
	}

	o.println("\nNext steps:")
	o.println("  1. Run 'memberctl register' to create an account, or")
	o.println("  2. Run 'memberctl login' to sign in")

	return nil
}
