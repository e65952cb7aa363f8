// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prmsu-dev/handbook/internal/config"
	"github.com/prmsu-dev/handbook/internal/logging"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultAddress is where the CLI looks for a running server.
const defaultAddress = "127.0.0.1:8000"

// NewRootCmd creates the root handbook command with all subcommands registered.
// It resets the global Viper so every command tree starts from defaults.
func NewRootCmd() *cobra.Command {
	viper.Reset()

	root := &cobra.Command{
		Use:           "handbook",
		Short:         "PRMSU student handbook assistant",
		Long:          "handbook answers questions about the PRMSU student handbook from a curated knowledge base, over HTTP or from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags, mapped to viper keys in initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newChatCmd(),
		newTopicsCmd(),
		newStatusCmd(),
		newDoctorCmd(),
		newSecretCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return hberr.Errorf(hberr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is left unset: with it Viper also tries the bare
		// name, which would match a ./handbook binary.
		v.SetConfigName("handbook")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/handbook")
		v.AddConfigPath("/etc/handbook")
		// No config file is fine; parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return hberr.Errorf(hberr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return hberr.Errorf(hberr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return hberr.Errorf(hberr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// loadConfig decodes the effective configuration, installs the logger on
// logOut and checks the config file permissions.
func loadConfig(logOut io.Writer) (*config.Config, error) {
	v := viper.GetViper()

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	if v.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Logging, logOut); err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "file", v.ConfigFileUsed())

	config.WarnInsecurePermissions(v.ConfigFileUsed(), cfg)
	return cfg, nil
}
