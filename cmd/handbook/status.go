// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"fmt"

	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Check the running server's health endpoint and display status information.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", defaultAddress, "server address to check")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	var body server.HealthBody
	if err := newServerClient(addr).getJSON("/health", &body); err != nil {
		if hberr.HasCode(err, hberr.CodeCLIGatewayNotRunning) {
			_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, body.Status)
	_, _ = fmt.Fprintf(out, "  knowledge base: %s (%d topics)\n", body.KnowledgeBase, body.TotalTopics)
	if body.Cache != nil {
		_, _ = fmt.Fprintf(out, "  answer cache:   %d entries, %d hits, %d misses\n",
			body.Cache.Entries, body.Cache.Hits, body.Cache.Misses)
	}
	if g := body.Generative; g != nil {
		_, _ = fmt.Fprintf(out, "  generative:     %s %s: %s\n", g.Provider, g.Model, g.Message)
	}
	return nil
}
