package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserConfig is the per-user state kept in ~/.config/memberctl/config.json.
// It never holds credentials; those live in the credential store.
type UserConfig struct {
	SelectedServerURL string `json:"selected_server_url"`
	LastEmail         string `json:"last_email,omitempty"`
}

// Path returns the location of the user config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "memberctl", "config.json"), nil
}

// Load reads the user config. A missing file yields an empty config.
func Load() (*UserConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	cfg := &UserConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg, creating the directory if needed. The file is private to
// the user.
func Save(cfg *UserConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return nil
}

func update(fn func(*UserConfig)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	fn(cfg)
	return Save(cfg)
}

// SetSelectedServer remembers serverURL; "" forgets the selection
func SetSelectedServer(serverURL string) error {
	return update(func(c *UserConfig) { c.SelectedServerURL = serverURL })
}

// GetSelectedServer returns the remembered server URL, or ""
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedServerURL, nil
}

// SetLastEmail remembers the email of the last successful login
func SetLastEmail(email string) error {
	return update(func(c *UserConfig) { c.LastEmail = email })
}
