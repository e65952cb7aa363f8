// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/prmsu-dev/handbook/internal/config"
	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, configuration, knowledge base integrity, a running server, the generative provider and disk space.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", defaultAddress, "server address to check")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")
	ctx := contextOrBackground(cmd)

	cfg, cfgErr := config.FromViper(viper.GetViper())

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", func() string { return checkConfig(cfgErr) }},
		{"Knowledge Base", func() string { return checkKnowledge(cfg) }},
		{"Server", func() string { return checkServer(addr) }},
		{"Generative", func() string { return checkGenerative(ctx, cfg) }},
		{"Disk Space", func() string { return checkDiskSpace(configDir()) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("handbook %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(err error) string {
	if err != nil {
		return fmt.Sprintf("invalid: %s", err)
	}
	cfgFile := viper.ConfigFileUsed()
	if cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkKnowledge(cfg *config.Config) string {
	if cfg == nil {
		return "skipped (config invalid)"
	}
	hb, _, err := loadKnowledge(cfg)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}

	summary := fmt.Sprintf("%s from %s: %d topics, %d rules", hb.Name, hb.Source, hb.Store.Len(), len(hb.Retriever.Rules()))
	if unreachable := hb.Retriever.Unreachable(); len(unreachable) > 0 {
		summary += fmt.Sprintf(" (unreachable: %s)", strings.Join(unreachable, ", "))
	}
	return summary
}

func checkServer(addr string) string {
	var body server.HealthBody
	if err := newServerClient(addr).getJSON("/health", &body); err != nil {
		if hberr.HasCode(err, hberr.CodeCLIGatewayNotRunning) {
			return fmt.Sprintf("not running at %s (run 'handbook serve')", addr)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s at %s (%d topics)", body.Status, addr, body.TotalTopics)
}

func checkGenerative(ctx context.Context, cfg *config.Config) string {
	if cfg == nil {
		return "skipped (config invalid)"
	}
	if !cfg.Generative.Enabled() {
		return "not configured"
	}

	p := newGenerativeProvider(cfg, secretStoreFactory())
	if p == nil {
		return fmt.Sprintf("%s: could not be created (see log)", cfg.Generative.Provider)
	}
	defer func() { _ = p.Close() }()

	if err := p.Probe(ctx); err != nil {
		return fmt.Sprintf("%s: %s", p.Name(), err)
	}
	return fmt.Sprintf("%s (%s) reachable", p.Name(), p.Model())
}

// configDir returns the directory holding the user config.
func configDir() string {
	if path, err := config.DefaultConfigPath(); err == nil {
		return filepath.Dir(path)
	}
	home, _ := os.UserHomeDir()
	return home
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
