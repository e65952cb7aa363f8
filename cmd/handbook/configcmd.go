// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"fmt"
	"io"

	"github.com/prmsu-dev/handbook/internal/config"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  "Print the configuration after defaults, config file and HANDBOOK_ environment overrides are applied. Literal API keys are redacted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeConfigYAML(cmd.OutOrStdout(), cfg)
		},
	}
}

func writeConfigYAML(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	if shown.Generative.HasLiteralKey() {
		shown.Generative.APIKey = redacted
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&shown); err != nil {
		return hberr.Errorf(hberr.CodeConfigParseInvalidFormat, "encoding config: %w", err)
	}
	return enc.Close()
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the commented default configuration file",
		// Skip config discovery: it would bootstrap the very file this writes.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE:              runConfigInit,
	}
	cmd.Flags().String("path", "", "destination (default ~/.config/handbook/handbook.yaml)")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")

	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	if err := config.WriteDefault(path, force); err != nil {
		if hberr.IsConflict(err) {
			return hberr.Errorf(hberr.CodeConfigAlreadyExists, "config file already exists at %s; use --force to overwrite", path)
		}
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return err
}
