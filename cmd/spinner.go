package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	succeedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type jobFinishedMsg struct {
	err error
}

// progressModel animates while a single background job runs, then leaves one line
// saying how it went.
type progressModel struct {
	spinner  spinner.Model
	label    string
	job      tea.Cmd
	err      error
	finished bool
}

func newProgressModel(label string, job tea.Cmd) progressModel {
	return progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(progressStyle)),
		label:   label,
		job:     job,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.job)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobFinishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if !m.finished {
		return m.spinner.View() + " " + m.label
	}

	// "Loading dashboard..." reads as "Loading dashboard" once it is over.
	subject := strings.TrimRight(m.label, ".… ")
	if m.err != nil {
		return failStyle.Render("✗") + " " + subject + ": " + m.err.Error() + "\n"
	}
	return succeedStyle.Render("✓") + " " + subject + "\n"
}

func runWithProgress(ctx context.Context, output io.Writer, label string, job func(context.Context) error) error {
	program := tea.NewProgram(
		newProgressModel(label, func() tea.Msg { return jobFinishedMsg{err: job(ctx)} }),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		return err
	}
	model, ok := final.(progressModel)
	if !ok {
		return fmt.Errorf("unexpected progress model type %T", final)
	}
	return model.err
}

// withSpinner shows progress on stderr while job runs, unless the output is meant
// for machines.
func withSpinner(cmd *cobra.Command, quiet bool, label string, job func(context.Context) error) error {
	if quiet {
		return job(cmd.Context())
	}
	return runWithProgress(cmd.Context(), cmd.ErrOrStderr(), label, job)
}
