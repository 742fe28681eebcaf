package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type registerInput struct {
	email    string
	name     string
	password string
	fields   []string
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts ...Option) *cobra.Command {
	var in registerInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a member account and sign in",
		Long: `Create a member account and sign in.

Extra profile fields can be passed as key=value pairs.

Examples:
  $ memberctl register --email ada@example.com --name "Ada Lovelace"
  $ memberctl register --email ada@example.com --name Ada --field phone=555-0100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, _ := cmd.Flags().GetString("server")
			return runRegister(cmd.Context(), in, with(opts, WithServerAlias(alias))...)
		},
	}

	cmd.Flags().StringVar(&in.email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.password, "password", "", "Password (or set MEMBERCTL_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringArrayVar(&in.fields, "field", nil, "Additional profile field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runRegister(ctx context.Context, in registerInput, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o := buildOptions(opts)

	data, err := parseFields(in.fields)
	if err != nil {
		return err
	}
	if in.email == "" || in.name == "" {
		return fmt.Errorf("--email and --name are required")
	}

	password := in.password
	if password == "" {
		password = os.Getenv("MEMBERCTL_PASSWORD")
	}
	if password == "" {
		password, err = promptNewPassword(o, "Password")
		if err != nil {
			return err
		}
	}

	data["email"] = in.email
	data["name"] = in.name
	data["password"] = password

	m, release, err := o.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer release()

	o.printf("Registering with %s...\n", o.serverLabel())

	res := m.Register(ctx, data)
	if !res.Success {
		return fmt.Errorf("registration failed: %s", res.Message)
	}

	user := m.CurrentUser()
	o.println("✓ Registration successful!")
	o.printf("  User: %s (%s)\n", user.String("name"), user.String("email"))
	o.printf("  Membership: %s\n", user.MembershipType())

	return nil
}

// promptNewPassword asks for a password twice
func promptNewPassword(o *Options, label string) (string, error) {
	password, err := o.prompt(label)
	if err != nil {
		if errors.Is(err, ErrNonInteractive) {
			return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or MEMBERCTL_PASSWORD env var)")
		}
		return "", err
	}
	confirm, err := o.prompt("Confirm " + label)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
