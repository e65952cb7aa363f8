// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
	"github.com/spf13/cobra"
)

// chatHistoryLimit bounds how many exchanges the TUI keeps on screen.
const chatHistoryLimit = 6

// askFunc answers one question locally or through a server.
type askFunc func(question string) (server.ChatResponse, error)

type exchange struct {
	question string
	resp     server.ChatResponse
	err      error
}

// answerMsg carries a finished exchange back into the model.
type answerMsg exchange

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	ask     askFunc
	title   string
	input   textinput.Model
	spinner spinner.Model
	history []exchange
	pending string
	busy    bool
}

func newChatModel(title string, ask askFunc) chatModel {
	in := textinput.New()
	in.Placeholder = "What does PRMSU stand for?"
	in.Prompt = "❯ "
	in.CharLimit = 1000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return chatModel{
		ask:     ask,
		title:   title,
		input:   in,
		spinner: sp,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.busy = false
		m.pending = ""
		m.history = append(m.history, exchange(msg))
		if len(m.history) > chatHistoryLimit {
			m.history = m.history[len(m.history)-chatHistoryLimit:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	q := strings.TrimSpace(m.input.Value())
	switch strings.ToLower(q) {
	case "":
		return m, nil
	case "exit", "quit", "/quit":
		return m, tea.Quit
	}

	m.input.Reset()
	m.pending = q
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, askCmd(m.ask, q))
}

func askCmd(ask askFunc, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := ask(question)
		return answerMsg{question: question, resp: resp, err: err}
	}
}

func (m chatModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  "+m.title+"  ") + "\n\n")

	for _, ex := range m.history {
		b.WriteString(promptStyle.Render("You: "+ex.question) + "\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render("  "+ex.err.Error()) + "\n\n")
			continue
		}
		b.WriteString(answerStyle.Render(ex.resp.Answer) + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s · sources: %d", ex.resp.Outcome, ex.resp.SourcesUsed)) + "\n\n")
	}

	if m.busy {
		b.WriteString(promptStyle.Render("You: "+m.pending) + "\n")
		b.WriteString(m.spinner.View() + " Looking it up…\n\n")
	}

	b.WriteString(m.input.View() + "\n")
	b.WriteString(dimStyle.Render("enter to ask  esc or ctrl+c to quit"))
	return b.String()
}

// --- Cobra command ---

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question and answer session",
		Long: "Ask questions in an interactive terminal session. Answers come from the configured knowledge base,\n" +
			"or from a running server when --address is set. When stdin is not a terminal each line is answered in turn.",
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().String("address", "", "chat with a running server at host:port instead of answering locally")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")

	title := "PRMSU Student Handbook"
	var ask askFunc
	if addr != "" {
		client := newServerClient(addr)
		ask = func(q string) (server.ChatResponse, error) {
			var resp server.ChatResponse
			err := client.postJSON("/chat", map[string]string{"question": q}, &resp)
			return resp, err
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
		title = hb.Name
		ask = func(q string) (server.ChatResponse, error) {
			return toChatResponse(p.Answer(q)), nil
		}
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		return answerLines(cmd.InOrStdin(), cmd.OutOrStdout(), ask)
	}

	p := tea.NewProgram(newChatModel(title, ask), tea.WithInput(f), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return hberr.Errorf(hberr.CodeCLISetupFailure, "chat session error: %w", err)
	}
	return nil
}

// answerLines answers each non-blank line of r.
func answerLines(r io.Reader, w io.Writer, ask askFunc) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			continue
		}
		resp, err := ask(q)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", promptStyle.Render("Q:"), q); err != nil {
			return err
		}
		if err := printAnswer(w, resp); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return hberr.Errorf(hberr.CodeCLIInputInvalid, "reading questions: %w", err)
	}
	return nil
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
