package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"rigtycoon/internal/game"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runREPL is the plain line loop used when stdin is not a terminal.
func runREPL(sh *shell, in io.Reader, out io.Writer) error {
	renderStatus(out, sh.g.Status())
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		changed, err := sh.exec(out, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			printError(out, describeErr(err))
			continue
		}
		if changed {
			autosave(sh, out)
		}
		if sh.g.Phase() == game.PhaseBankrupt {
			return nil
		}
	}
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type playModel struct {
	sh     *shell
	input  textinput.Model
	output string
	width  int
	done   bool
}

func newPlayModel(sh *shell) playModel {
	ti := textinput.New()
	ti.Placeholder = "tenders, bid 3 1 120, advance auto, help"
	ti.Prompt = promptStyle.Render("rig> ")
	ti.CharLimit = 120
	ti.Focus()

	var buf bytes.Buffer
	renderTenders(&buf, sh.g.TenderViews())
	return playModel{sh: sh, input: ti, output: buf.String()}
}

func (m playModel) Init() tea.Cmd { return textinput.Blink }

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			var buf bytes.Buffer
			changed, err := m.sh.exec(&buf, line)
			if errors.Is(err, errQuit) {
				m.done = true
				return m, tea.Quit
			}
			if err != nil {
				printError(&buf, describeErr(err))
			}
			if changed {
				autosave(m.sh, &buf)
			}
			if line != "" {
				m.output = buf.String()
			}
			if m.sh.g.Phase() == game.PhaseBankrupt {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m playModel) View() string {
	if m.done {
		return ""
	}
	var status bytes.Buffer
	renderStatus(&status, m.sh.g.Status())
	return lipgloss.JoinVertical(lipgloss.Left,
		status.String(),
		m.output,
		m.input.View(),
		hintStyle.Render("enter to run, esc to leave; the game saves after every change"),
	)
}

func runTUI(sh *shell) error {
	if _, err := tea.NewProgram(newPlayModel(sh), tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if sh.g.Phase() == game.PhaseBankrupt {
		renderStatus(os.Stdout, sh.g.Status())
	}
	return nil
}
