package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "memberctl.json"

// ConfigFileNames lists the accepted project config names in lookup order
var ConfigFileNames = []string{ConfigFileName, "memberctl.yaml", "memberctl.yml"}

// ErrNotFound is returned when no project config exists up the directory tree
var ErrNotFound = errors.New("memberctl config not found")

// Server represents a member portal server
type Server struct {
	URL   string `json:"url" yaml:"url" validate:"required,url"`
	Alias string `json:"alias" yaml:"alias" validate:"required"`
}

// Defaults holds optional per-project defaults for commands
type Defaults struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
}

// Config represents the CLI project configuration file
type Config struct {
	Servers  []Server `json:"servers" yaml:"servers" validate:"unique=Alias,unique=URL,dive"`
	Defaults Defaults `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// DefaultConfig returns an empty configuration
func DefaultConfig() *Config {
	return &Config{Servers: []Server{}}
}

// Validate checks server entries are well formed and aliases are unique
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FindConfigFile searches for a project config in dir and its parents
func FindConfigFile(dir string) (string, error) {
	start := dir
	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: %s not found in %s or any parent directory", ErrNotFound, ConfigFileName, start)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath, err := FindConfigFile(currentDir)
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file, as YAML when path ends in .yaml/.yml
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddServer appends a server, replacing any existing entry with the same URL or alias
func (c *Config) AddServer(server Server) {
	kept := c.Servers[:0]
	for _, s := range c.Servers {
		if s.URL == server.URL || s.Alias == server.Alias {
			continue
		}
		kept = append(kept, s)
	}
	c.Servers = append(kept, server)
}

// GetServerByAlias returns a server by its alias
func (c *Config) GetServerByAlias(alias string) (*Server, error) {
	for i := range c.Servers {
		if c.Servers[i].Alias == alias {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with alias '%s' not found", alias)
}

// GetServerByURL returns a server by its URL
func (c *Config) GetServerByURL(url string) (*Server, error) {
	for i := range c.Servers {
		if c.Servers[i].URL == url {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with URL '%s' not found", url)
}

// GetDefaultServer returns the first server in the list
func (c *Config) GetDefaultServer() (*Server, error) {
	if len(c.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s", ConfigFileName)
	}
	return &c.Servers[0], nil
}
