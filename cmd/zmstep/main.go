// Command zmstep runs a single story file interactively. It is the thin
// host side of the core: it calls interp.Interpreter.Step repeatedly until
// the interpreter halts, fails, waits for a key or reaches -max-steps,
// feeds typed keys back through StepWithInput or StepWithChar, and appends
// the newly produced part of Interpreter.Output to its transcript.
//
// Grounded on runStoryModel (_examples/DaveTCode-zmachine-golang/main.go),
// stripped of its windowing/status-bar/save-restore machinery - this core
// has no screen model beyond a single scrolling transcript, and no
// persistence layer (see SPEC_FULL.md Non-goals).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zm3core/zm3/interp"
	"github.com/zm3core/zm3/story"
)

var (
	romFilePath string
	maxSteps    int
)

func init() {
	flag.StringVar(&romFilePath, "rom", "", "path to a version-3 Z-machine story file")
	flag.IntVar(&maxSteps, "max-steps", 0, "stop after this many instructions (0 = unbounded)")
	flag.Parse()
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
var transcriptStyle = lipgloss.NewStyle()
var inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

type stepModel struct {
	ip         interp.Interpreter
	transcript string
	inputBox   textinput.Model
	width      int
	height     int
	runtimeErr string
	stepCount  int
}

func (m stepModel) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), runUntilSuspended(m.ip, m.stepCount))
}

// suspendedMsg carries the interpreter state once Step has either exhausted
// maxSteps, halted, or reached a point where it needs a typed character.
type suspendedMsg struct {
	ip    interp.Interpreter
	steps int
	err   error
}

func runUntilSuspended(ip interp.Interpreter, steps int) tea.Cmd {
	return func() tea.Msg {
		for ip.State == interp.Running {
			if maxSteps > 0 && steps >= maxSteps {
				break
			}
			next, err := ip.Step()
			if err != nil {
				return suspendedMsg{ip: ip, steps: steps, err: err}
			}
			ip = next
			steps++
		}
		return suspendedMsg{ip: ip, steps: steps}
	}
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.ip.State {
		case interp.WaitingForChar:
			if len(msg.Runes) == 0 {
				return m, nil
			}
			next, err := m.ip.StepWithChar(msg.Runes[0])
			if err != nil {
				m.runtimeErr = err.Error()
				return m, tea.Quit
			}
			m.transcript += next.Output[len(m.ip.Output):]
			m.ip = next
			return m, runUntilSuspended(m.ip, m.stepCount)

		case interp.WaitingForInput:
			if msg.Type == tea.KeyEnter {
				line := m.inputBox.Value()
				m.transcript += line + "\n"
				m.inputBox.SetValue("")
				ip := m.ip
				var err error
				for _, r := range line {
					ip, err = ip.StepWithInput(r)
					if err != nil {
						m.runtimeErr = err.Error()
						return m, tea.Quit
					}
				}
				ip, err = ip.StepWithInput('\n')
				if err != nil {
					m.runtimeErr = err.Error()
					return m, tea.Quit
				}
				m.transcript += ip.Output[len(m.ip.Output):]
				m.ip = ip
				return m, runUntilSuspended(m.ip, m.stepCount)
			}
			var cmd tea.Cmd
			m.inputBox, cmd = m.inputBox.Update(msg)
			return m, cmd
		}

	case suspendedMsg:
		m.transcript += msg.ip.Output[len(m.ip.Output):]
		m.ip = msg.ip
		m.stepCount = msg.steps
		if msg.err != nil {
			m.runtimeErr = msg.err.Error()
			return m, tea.Quit
		}
		if m.ip.State == interp.Halted {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m stepModel) View() string {
	if m.runtimeErr != "" {
		return fmt.Sprintf("\n%s\n\n%s\n", errorStyle.Render("Z-Machine Error:"), m.runtimeErr)
	}
	if m.width == 0 {
		return "Initializing..."
	}

	body := wordwrap.String(m.transcript, m.width)
	lines := strings.Split(body, "\n")
	visible := m.height - 2
	if visible < 1 {
		visible = 1
	}
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	out := transcriptStyle.Render(strings.Join(lines, "\n"))
	if m.ip.State == interp.WaitingForInput {
		out += "\n" + inputStyle.Render("> "+m.inputBox.View())
	}
	return out
}

func main() {
	if romFilePath == "" {
		fmt.Fprintln(os.Stderr, "usage: zmstep -rom <file.z3>")
		os.Exit(1)
	}

	raw, err := os.ReadFile(romFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", romFilePath, err)
		os.Exit(1)
	}

	st, err := story.Load(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading story: %v\n", err)
		os.Exit(1)
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = ""

	model := stepModel{ip: interp.New(st), inputBox: ti}

	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "running program:", err)
		os.Exit(1)
	}
}
