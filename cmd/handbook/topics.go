// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const topicPreviewLen = 72

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics [key]",
		Short: "List knowledge base topics",
		Long:  "List the topics of the configured knowledge base, or print one topic in full.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTopics,
	}
	cmd.Flags().Bool("json", false, "print topics as JSON")
	return cmd
}

func runTopics(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	hb, _, err := loadKnowledge(cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		t, err := hb.Store.Lookup(args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, t)
		}
		_, err = fmt.Fprintf(out, "%s\n%s\n", keyStyle.Render(t.Key), t.Fact)
		return err
	}

	topics := hb.Store.Topics()
	if asJSON {
		return writeJSON(out, topics)
	}

	if _, err := fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s: %d topics", hb.Name, len(topics)))); err != nil {
		return err
	}
	for _, t := range topics {
		if _, err := fmt.Fprintf(out, "%-28s %s\n", t.Key, dimStyle.Render(preview(t.Fact, topicPreviewLen))); err != nil {
			return err
		}
	}
	return nil
}

// preview shortens s to at most n runes.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
