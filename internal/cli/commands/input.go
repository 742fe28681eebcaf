package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNonInteractive is returned when a prompt is needed but stdin is not a terminal
var ErrNonInteractive = errors.New("stdin is not a terminal")

// PasswordPrompt reads a secret after showing label
type PasswordPrompt func(label string) (string, error)

func terminalPasswordPrompt(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(fd) {
		return "", ErrNonInteractive
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	bytePassword, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// parseFields turns key=value arguments into a mapping
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", arg)
		}
		fields[key] = value
	}
	return fields, nil
}
