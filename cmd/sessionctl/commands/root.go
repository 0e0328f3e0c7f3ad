// Package commands implements the sessionctl CLI: a thin operator shell over
// the sessionkit coordinator for logging in via magic link, inspecting and
// refreshing the session, and managing trusted devices.
package commands

import (
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/daon-network/sessionkit"
)

var (
	home       string
	configPath string
	apiURL     string

	coordinator *sessionkit.Coordinator
	auditFile   *os.File
)

func Execute() error {
	root := &cobra.Command{
		Use:           "sessionctl",
		Short:         "Manage a passwordless session from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".sessionctl")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if configPath == "" {
				configPath = defaultConfigPath(home)
			}

			fileCfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = fileCfg.APIURL
			}
			stateDir := fileCfg.StateDir
			if stateDir == "" {
				stateDir = home
			}

			builder := sessionkit.New()
			kitCfg := applyDefaults(sessionkit.DefaultConfig(), fileCfg)
			builder.WithConfig(kitCfg).
				WithAPIBaseURL(apiURL).
				WithStateDir(stateDir).
				WithMetricsEnabled(true)

			if fileCfg.RedisAddr != "" {
				builder.WithRedis(redis.NewClient(&redis.Options{Addr: fileCfg.RedisAddr}))
			}
			if fileCfg.AuditLog != "" {
				auditFile, err = os.OpenFile(fileCfg.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				builder.WithAuditSink(sessionkit.NewJSONWriterSink(auditFile))
			}

			coordinator, err = builder.Build(cmd.Context())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if coordinator != nil {
				coordinator.Close()
			}
			if auditFile != nil {
				_ = auditFile.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.sessionctl)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&apiURL, "api", "", "authentication API base URL")

	root.AddCommand(loginCmd(), statusCmd(), refreshCmd(), logoutCmd(), devicesCmd(), revokeAllCmd())
	return root.Execute()
}

func applyDefaults(cfg sessionkit.Config, fileCfg fileConfig) sessionkit.Config {
	out := cfg
	if fileCfg.Channel != "" {
		out.Broadcast.Channel = fileCfg.Channel
	}
	if fileCfg.DeviceName != "" {
		out.Device.Name = fileCfg.DeviceName
	}
	return out
}
