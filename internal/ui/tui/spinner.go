package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// doneMsg signals that the wrapped work finished.
type doneMsg struct {
	err error
}

// spinnerModel animates a spinner while a blocking call runs.
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	err      error
	canceled bool
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Spinner
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.err != nil || m.canceled {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// WithSpinner runs fn while animating a spinner with the given message.
// When stdout is not a terminal the spinner is skipped and fn runs
// directly, so piped output stays clean.
func WithSpinner(message string, fn func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fn()
	}

	p := tea.NewProgram(newSpinnerModel(message))
	go func() {
		p.Send(doneMsg{err: fn()})
	}()

	out, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := out.(spinnerModel); ok {
		if m.canceled {
			return fmt.Errorf("canceled")
		}
		return m.err
	}
	return nil
}
