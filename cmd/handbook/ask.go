// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question",
		Long: "Answer a question from the configured knowledge base, or from a running server when --address is set.\n" +
			"Multiple arguments are joined with spaces.",
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().String("address", "", "ask a running server at host:port instead of answering locally")
	cmd.Flags().Bool("json", false, "print the response as JSON")
	cmd.Flags().Bool("explain", false, "show the relevance decision and matched rules (local only)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("address")
	asJSON, _ := cmd.Flags().GetBool("json")
	withExplain, _ := cmd.Flags().GetBool("explain")
	out := cmd.OutOrStdout()

	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		return hberr.New(hberr.CodeCLIInputInvalid, "Question cannot be empty")
	}

	var resp server.ChatResponse
	if addr != "" {
		if withExplain {
			return hberr.New(hberr.CodeCLIInputInvalid, "--explain is only available when answering locally")
		}
		if err := newServerClient(addr).postJSON("/chat", map[string]string{"question": question}, &resp); err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		hb, p, err := loadKnowledge(cfg)
		if err != nil {
			return err
		}
		resp = toChatResponse(p.Answer(question))

		if withExplain {
			if asJSON {
				return writeJSON(out, struct {
					server.ChatResponse
					Explanation explanation `json:"explanation"`
				}{resp, explain(hb, question)})
			}
			if err := printExplanation(out, explain(hb, question)); err != nil {
				return err
			}
		}
	}

	if asJSON {
		return writeJSON(out, resp)
	}
	return printAnswer(out, resp)
}

// toChatResponse mirrors the server's chat response for local answers.
func toChatResponse(a answer.Answer) server.ChatResponse {
	return server.ChatResponse{
		Question:     a.Question,
		Answer:       a.Text,
		SourcesUsed:  a.Sources,
		ResponseTime: a.Elapsed.Seconds(),
		Outcome:      string(a.Outcome),
		Category:     a.Category,
	}
}

type explanation struct {
	Relevant bool     `json:"relevant"`
	Decision string   `json:"decision"`
	Match    string   `json:"match,omitempty"`
	Rules    []string `json:"rules"`
	Topics   []string `json:"topics"`
	Category string   `json:"category"`
}

func explain(hb *handbook.Handbook, question string) explanation {
	v := hb.Filter.Explain(question)
	e := explanation{
		Relevant: v.Relevant,
		Decision: string(v.Decision),
		Match:    v.Match,
		Rules:    []string{},
		Topics:   []string{},
		Category: hb.Formatter.Classify(question).Name,
	}
	for _, m := range hb.Retriever.Matches(question) {
		e.Rules = append(e.Rules, m.Rule)
		e.Topics = append(e.Topics, m.Topics...)
	}
	return e
}

func printExplanation(w io.Writer, e explanation) error {
	verdict := errorStyle.Render("not relevant")
	if e.Relevant {
		verdict = successStyle.Render("relevant")
	}
	match := e.Match
	if match == "" {
		match = "-"
	}
	rules := "none"
	if len(e.Rules) > 0 {
		rules = strings.Join(e.Rules, ", ")
	}
	topics := "none"
	if len(e.Topics) > 0 {
		topics = strings.Join(e.Topics, ", ")
	}

	_, err := fmt.Fprintf(w, "%s %s (%s: %s)\n%s %s\n%s %s\n%s %s\n\n",
		dimStyle.Render("relevance:"), verdict, e.Decision, match,
		dimStyle.Render("rules:    "), rules,
		dimStyle.Render("topics:   "), topics,
		dimStyle.Render("category: "), e.Category,
	)
	return err
}

func printAnswer(w io.Writer, resp server.ChatResponse) error {
	footer := fmt.Sprintf("%s · sources: %d · %.3fs", resp.Outcome, resp.SourcesUsed, resp.ResponseTime)
	_, err := fmt.Fprintf(w, "%s\n%s\n", answerStyle.Render(resp.Answer), dimStyle.Render(footer))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
