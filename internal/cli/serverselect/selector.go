package serverselect

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/cli/userconfig"
)

// promptSelect is swapped out in tests
var promptSelect = PromptServerSelection

// ResolveServer picks the portal server a command talks to. In order:
// an explicit --server value (alias or URL), the server remembered in the
// user config, the only configured server, or an interactive choice.
// Automatic and interactive picks are remembered for the next run.
func ResolveServer(projectConfig *config.Config, flagValue string) (*config.Server, error) {
	if flagValue != "" {
		return GetServerByURLOrAlias(projectConfig, flagValue)
	}

	if server, ok, err := rememberedServer(projectConfig); err != nil || ok {
		return server, err
	}

	var server *config.Server
	if len(projectConfig.Servers) == 1 {
		server = &projectConfig.Servers[0]
	} else {
		picked, err := promptSelect(projectConfig)
		if err != nil {
			return nil, err
		}
		server = picked
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not remember %s: %v\n", server.URL, err)
	}
	return server, nil
}

// rememberedServer returns the user's saved selection if it is still listed
// in the project config. A stale selection is forgotten.
func rememberedServer(projectConfig *config.Config) (*config.Server, bool, error) {
	url, err := userconfig.GetSelectedServer()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load user config: %w", err)
	}
	if url == "" {
		return nil, false, nil
	}

	server, err := projectConfig.GetServerByURL(url)
	if err != nil {
		_ = userconfig.SetSelectedServer("")
		return nil, false, nil
	}
	return server, true, nil
}

type choice struct {
	Label  string
	Server *config.Server
}

// PromptServerSelection asks the user to choose one of the configured portals
func PromptServerSelection(projectConfig *config.Config) (*config.Server, error) {
	if len(projectConfig.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s; run 'memberctl init <url>'", config.ConfigFileName)
	}

	choices := make([]choice, 0, len(projectConfig.Servers))
	for i := range projectConfig.Servers {
		s := &projectConfig.Servers[i]
		label := s.URL
		if s.Alias != "" {
			label = fmt.Sprintf("%s  %s", s.Alias, s.URL)
		}
		choices = append(choices, choice{Label: label, Server: s})
	}

	prompt := promptui.Select{
		Label: "Member portal",
		Items: choices,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }}",
			Inactive: "  {{ .Label }}",
			Selected: "Using {{ .Label | green }}",
		},
		Size: 10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}
	return choices[index].Server, nil
}

// GetServerByURLOrAlias looks value up as a URL first, then as an alias
func GetServerByURLOrAlias(cfg *config.Config, value string) (*config.Server, error) {
	if server, err := cfg.GetServerByURL(value); err == nil {
		return server, nil
	}
	if server, err := cfg.GetServerByAlias(value); err == nil {
		return server, nil
	}
	return nil, fmt.Errorf("no server with URL or alias %q in %s", value, config.ConfigFileName)
}
