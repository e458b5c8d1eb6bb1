package display

import (
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrTerminalClosed is returned once the terminal program has exited.
var ErrTerminalClosed = errors.New("terminal closed")

// keyBuffer bounds how many unread key presses are kept for the shutdown
// monitor; older presses are dropped when it is full.
const keyBuffer = 16

var rowStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("15")).
	Background(lipgloss.Color("0")).
	Width(Columns).
	MaxWidth(Columns)

type frameMsg struct {
	rows Rows
}

type readyMsg struct{}

// terminalModel is the bubbletea model behind Terminal.
type terminalModel struct {
	rows      Rows
	keys      chan<- string
	ready     chan struct{}
	readyOnce sync.Once
}

func newTerminalModel(keys chan<- string) *terminalModel {
	return &terminalModel{keys: keys, ready: make(chan struct{})}
}

func (m *terminalModel) Init() tea.Cmd {
	return func() tea.Msg { return readyMsg{} }
}

func (m *terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readyMsg:
		m.readyOnce.Do(func() { close(m.ready) })
	case frameMsg:
		m.rows = msg.rows
	case tea.KeyMsg:
		select {
		case m.keys <- msg.String():
		default:
		}
	}
	return m, nil
}

func (m *terminalModel) View() string {
	lines := make([]string, RowCount)
	for i, row := range m.rows {
		lines[i] = rowStyle.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

// Terminal renders the rows in an alternate-screen, raw-mode terminal
// session that lives from Start to Shutdown.
type Terminal struct {
	program *tea.Program
	model   *terminalModel
	keys    chan string

	done   chan struct{}
	runErr error
	stop   sync.Once
}

var _ Target = (*Terminal)(nil)

// NewTerminal prepares a terminal target. Extra options are appended to the
// defaults (alternate screen, no signal handler).
func NewTerminal(opts ...tea.ProgramOption) *Terminal {
	keys := make(chan string, keyBuffer)
	model := newTerminalModel(keys)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}, opts...)
	return &Terminal{
		program: tea.NewProgram(model, opts...),
		model:   model,
		keys:    keys,
		done:    make(chan struct{}),
	}
}

func (t *Terminal) Name() string {
	return "terminal"
}

// Start enters the alternate screen and raw mode. It returns once the
// program is running, or with the error that prevented it from starting.
func (t *Terminal) Start() error {
	go func() {
		defer close(t.done)
		_, t.runErr = t.program.Run()
	}()

	select {
	case <-t.model.ready:
		return nil
	case <-t.done:
		if t.runErr != nil {
			return t.runErr
		}
		return ErrTerminalClosed
	}
}

// Keys delivers the names of pressed keys ("q", "ctrl+c", ...).
func (t *Terminal) Keys() <-chan string {
	return t.keys
}

// Open returns a session that buffers one frame and shows it on Close.
func (t *Terminal) Open() (Session, error) {
	select {
	case <-t.done:
		return nil, ErrTerminalClosed
	default:
	}
	return &terminalSession{terminal: t}, nil
}

// Shutdown stops the program and restores the terminal: raw mode is
// disabled and the alternate screen is left. It is safe to call more than
// once.
func (t *Terminal) Shutdown() error {
	t.stop.Do(func() {
		t.program.Quit()
	})
	<-t.done
	if t.runErr != nil && !errors.Is(t.runErr, tea.ErrProgramKilled) {
		return t.runErr
	}
	return nil
}

type terminalSession struct {
	terminal *Terminal
	rows     Rows
}

func (s *terminalSession) Clear() error {
	s.rows = Rows{}
	return nil
}

func (s *terminalSession) WriteRow(index int, text Line) error {
	if err := checkRow(index); err != nil {
		return err
	}
	s.rows[index] = text
	return nil
}

func (s *terminalSession) Close() error {
	select {
	case <-s.terminal.done:
		return ErrTerminalClosed
	default:
	}
	s.terminal.program.Send(frameMsg{rows: s.rows})
	return nil
}
