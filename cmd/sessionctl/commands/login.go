package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daon-network/sessionkit"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Log in via magic link, completing a second factor if demanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := coordinator.NewLoginFlow()

			if err := flow.RequestLink(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("If that address has an account, a login link is on its way.")

			token, err := prompt("Paste the link token: ")
			if err != nil {
				return err
			}

			outcome, err := flow.VerifyLink(ctx, token)
			if err != nil {
				return err
			}

			switch {
			case outcome.Authenticated:
				// Done below.
			case outcome.SecondFactorSetupRequired:
				provision, err := flow.BeginSecondFactorSetup(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Add this secret to your authenticator: %s\n", provision.Secret)
				fmt.Printf("Or scan: %s\n", provision.URI)
				if err := retryCode(func(code string) error {
					return flow.CompleteSecondFactorSetup(ctx, code, true)
				}); err != nil {
					return err
				}
			case outcome.SecondFactorRequired:
				if err := retryCode(func(code string) error {
					return flow.CompleteSecondFactor(ctx, code)
				}); err != nil {
					return err
				}
			}

			session := coordinator.Snapshot()
			if session.User != nil {
				fmt.Printf("Logged in as %s\n", session.User.Email)
			}
			return nil
		},
	}
	return cmd
}

// retryCode prompts for second-factor codes until one verifies or a
// non-retryable error surfaces; the lockout count is the server's.
func retryCode(complete func(code string) error) error {
	for {
		code, err := prompt("Enter your 6-digit code (or a backup code): ")
		if err != nil {
			return err
		}
		err = complete(code)
		if err == nil {
			return nil
		}
		if errors.Is(err, sessionkit.ErrInvalidCode) {
			fmt.Println("That code didn't verify; try again.")
			continue
		}
		return err
	}
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
