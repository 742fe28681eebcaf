package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/memberctl/internal/auth"
	cliauth "github.com/branchd-dev/memberctl/internal/cli/auth"
	"github.com/branchd-dev/memberctl/internal/session"
)

// fields printed first, in this order
var leadingFields = []string{"id", "name", "email", "membershipType"}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...Option) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runWhoami(cmd.Context(), asJSON, with(opts, WithServerAlias(alias))...)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session status as JSON")

	return cmd
}

func runWhoami(ctx context.Context, asJSON bool, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	m, release, err := o.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	status := m.Status()
	if !status.IsAuthenticated {
		return cliauth.ErrNotAuthenticated
	}

	if asJSON {
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	o.printf("Server: %s\n", o.serverLabel())
	printProfile(o, status.CurrentUser)
	if status.IsAdmin {
		o.println("Admin:  yes")
	} else {
		o.println("Admin:  no")
	}

	if info, err := auth.Inspect(m.Token()); err == nil {
		switch {
		case info.ExpiresAt.IsZero():
			o.println("Token:  no expiry")
		case info.Expired(time.Now()):
			o.printf("Token:  expired %s\n", info.ExpiresAt.Local().Format(time.RFC3339))
		default:
			o.printf("Token:  expires %s\n", info.ExpiresAt.Local().Format(time.RFC3339))
		}
	}

	return nil
}

func printProfile(o *Options, p session.Profile) {
	seen := make(map[string]bool, len(p))
	for _, key := range leadingFields {
		if _, ok := p[key]; ok {
			o.printf("%-14s %s\n", key+":", p.String(key))
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(p))
	for key := range p {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		o.printf("%-14s %s\n", key+":", p.String(key))
	}
}

// requireAuthenticated restores the session and fails when no credential remains
func requireAuthenticated(ctx context.Context, o *Options) (*session.Manager, func(), error) {
	m, release, err := o.openSession(ctx, true)
	if err != nil {
		return nil, release, err
	}
	if !m.IsAuthenticated() {
		release()
		return nil, func() {}, fmt.Errorf("%w (%s)", cliauth.ErrNotAuthenticated, o.serverLabel())
	}
	return m, release, nil
}
