package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage this account's registered devices",
	}
	cmd.AddCommand(devicesListCmd(), devicesRenameCmd(), devicesRemoveCmd())
	return cmd
}

func devicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator.Restore(cmd.Context())
			devices, err := coordinator.Devices().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No registered devices.")
				return nil
			}
			for _, d := range devices {
				trust := "not trusted"
				if d.TrustedUntil != nil && d.TrustedUntil.After(time.Now()) {
					trust = "trusted until " + d.TrustedUntil.Format(time.RFC3339)
				}
				fmt.Printf("%s  %s  last seen %s  %s\n",
					d.ID, d.Name, d.LastSeenAt.Format(time.RFC3339), trust)
			}
			return nil
		},
	}
}

func devicesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator.Restore(cmd.Context())
			updated, err := coordinator.Devices().Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Renamed %s to %q\n", updated.ID, updated.Name)
			return nil
		},
	}
}

func devicesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a device registration and end its trust window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator.Restore(cmd.Context())
			if err := coordinator.Devices().Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Device removed.")
			return nil
		},
	}
}
