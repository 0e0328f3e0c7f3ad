package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daon-network/sessionkit"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := coordinator.Restore(cmd.Context())
			if !session.Authenticated {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("Logged in as %s (user %s)\n", session.User.Email, session.User.ID)
			if session.User.SecondFactorEnabled {
				fmt.Println("Second factor: enabled")
			} else {
				fmt.Println("Second factor: not enabled")
			}
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a credential refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator.Restore(cmd.Context())
			if err := coordinator.Refresh(cmd.Context()); err != nil {
				if sessionkit.IsCredentialFailure(err) {
					fmt.Println("Session revoked by the server; log in again.")
					return nil
				}
				return err
			}
			fmt.Println("Session refreshed.")
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out locally and revoke the session server-side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator.Restore(cmd.Context())
			coordinator.Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func revokeAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-all",
		Short: "Revoke every session of this account, then log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := coordinator.Restore(cmd.Context())
			if !session.Authenticated {
				fmt.Println("Not logged in.")
				return nil
			}
			if err := coordinator.RevokeAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All sessions revoked.")
			return nil
		},
	}
}
