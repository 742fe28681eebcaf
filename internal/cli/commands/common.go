package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/memberctl/internal/cli/auth"
	"github.com/branchd-dev/memberctl/internal/cli/client"
	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/cli/serverselect"
	appconfig "github.com/branchd-dev/memberctl/internal/config"
	"github.com/branchd-dev/memberctl/internal/logger"
	"github.com/branchd-dev/memberctl/internal/session"
)

// Options carries the dependencies a command needs. Production commands
// resolve everything from config; tests inject the pieces directly.
type Options struct {
	runtime     *appconfig.Config
	version     string
	serverAlias string
	server      *config.Server
	tokenStore  auth.TokenStore
	apiClient   *client.Client
	manager     *session.Manager
	out         io.Writer
	prompt      PasswordPrompt
	logger      *zerolog.Logger
}

// Option configures command dependencies
type Option func(*Options)

// WithRuntimeConfig sets the environment-derived configuration
func WithRuntimeConfig(cfg *appconfig.Config) Option {
	return func(o *Options) {
		o.runtime = cfg
	}
}

// WithVersion sets the version reported in the User-Agent
func WithVersion(version string) Option {
	return func(o *Options) {
		o.version = version
	}
}

// WithServerAlias selects a server by alias or URL
func WithServerAlias(alias string) Option {
	return func(o *Options) {
		o.serverAlias = alias
	}
}

// WithServer bypasses project config resolution
func WithServer(server *config.Server) Option {
	return func(o *Options) {
		o.server = server
	}
}

// WithTokenStore sets the credential store
func WithTokenStore(store auth.TokenStore) Option {
	return func(o *Options) {
		o.tokenStore = store
	}
}

// WithAPIClient sets the API client
func WithAPIClient(c *client.Client) Option {
	return func(o *Options) {
		o.apiClient = c
	}
}

// WithSession sets a ready-made session manager
func WithSession(m *session.Manager) Option {
	return func(o *Options) {
		o.manager = m
	}
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.out = w
	}
}

// WithPasswordPrompt replaces the terminal password prompt
func WithPasswordPrompt(p PasswordPrompt) Option {
	return func(o *Options) {
		o.prompt = p
	}
}

// WithLogger sets the logger handed to the client and session
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.logger = &l
	}
}

func buildOptions(opts []Option) *Options {
	o := &Options{
		version: "dev",
		out:     os.Stdout,
		prompt:  terminalPasswordPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.runtime == nil {
		o.runtime = &appconfig.Config{
			HTTP:        appconfig.HTTPConfig{Timeout: appconfig.DefaultHTTPTimeout},
			Credentials: appconfig.CredentialsConfig{Store: appconfig.StoreKeyring},
		}
	}
	if o.logger == nil {
		l := logger.GetLogger()
		o.logger = &l
	}
	return o
}

// with returns a copy of base extended by extra options
func with(base []Option, extra ...Option) []Option {
	out := make([]Option, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func (o *Options) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}

func (o *Options) println(args ...any) {
	fmt.Fprintln(o.out, args...)
}

// getSelectedServer loads the project config and returns the selected server.
// This is common logic used by most commands.
func getSelectedServer(alias string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'memberctl init <url>' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, alias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	return server, nil
}

func (o *Options) resolveServer() (*config.Server, error) {
	if o.server != nil {
		return o.server, nil
	}
	server, err := getSelectedServer(o.serverAlias)
	if err != nil {
		return nil, err
	}
	o.server = server
	return server, nil
}

// openSession wires store, client and manager for the resolved server.
// When restore is set the stored credential is verified before returning.
// The returned func releases the store.
func (o *Options) openSession(ctx context.Context, restore bool) (*session.Manager, func(), error) {
	noop := func() {}

	if o.manager != nil {
		if restore {
			o.manager.Restore(ctx)
		}
		return o.manager, noop, nil
	}

	server, err := o.resolveServer()
	if err != nil {
		return nil, noop, err
	}

	store := o.tokenStore
	release := noop
	if store == nil {
		s, closeFn, err := auth.Open(o.runtime.Credentials, server.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open credential store: %w", err)
		}
		store = s
		release = func() {
			if err := closeFn(); err != nil {
				o.logger.Warn().Err(err).Msg("Failed to close credential store")
			}
		}
	}

	apiClient := o.apiClient
	if apiClient == nil {
		apiClient = client.New(server.URL,
			client.WithTimeout(o.runtime.HTTP.Timeout),
			client.WithInsecureTLS(o.runtime.HTTP.InsecureTLS),
			client.WithLogger(*o.logger),
			client.WithUserAgent("memberctl/"+o.version),
		)
	}

	m := session.New(store, apiClient, session.WithLogger(o.logger.With().Str("server", server.URL).Logger()))
	if restore {
		m.Restore(ctx)
	}
	o.manager = m
	return m, release, nil
}

func (o *Options) serverLabel() string {
	if o.server == nil {
		return "server"
	}
	return fmt.Sprintf("%s (%s)", o.server.Alias, o.server.URL)
}
