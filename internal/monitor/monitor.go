// Package monitor implements an interactive terminal debugger for the
// emulator core: a one-line disassembly of the word at PC, a register
// dump, and single-step/continue controls, built the same way the reference
// debugger in this codebase's lineage is — a Bubble Tea model driving a
// Lipgloss layout.
package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"goba/internal/cpu"
)

// Machine is the narrow view the monitor needs of the running system: a
// steppable CPU plus raw memory reads for the disassembly panel.
type Machine interface {
	Step() bool
	PC() uint32
	Cycles() uint64
	Regs() *cpu.Registers
	ReadWord(addr uint32) uint32
	ReadHalf(addr uint32) uint16
}

type model struct {
	m          Machine
	running    bool
	breakpoint uint32
	hasBreak   bool
	lastErr    error
}

var regStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
var pcStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s", " ":
			m.m.Step()
		case "c":
			m.running = true
			for i := 0; i < 1_000_000 && m.running; i++ {
				if m.hasBreak && m.m.PC() == m.breakpoint {
					m.running = false
					break
				}
				m.m.Step()
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	r := m.m.Regs()
	var b strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "r%-2d=%08x ", i, r.Get(uint8(i)))
		if i%4 == 3 {
			b.WriteByte('\n')
		}
	}
	regs := regStyle.Render(b.String())

	pc := m.m.PC()
	var disasm string
	if r.IsThumb() {
		disasm = cpu.DisasmThumb(m.m.ReadHalf(pc))
	} else {
		disasm = cpu.DisasmARM(m.m.ReadWord(pc))
	}

	header := pcStyle.Render(fmt.Sprintf("pc=%08x cycles=%d  %s", pc, m.m.Cycles(), disasm))
	status := fmt.Sprintf("cpsr=%08x mode=%02x thumb=%v", r.CPSR(), r.Mode(), r.IsThumb())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		regs,
		status,
		"",
		"[s]tep  [c]ontinue  [q]uit",
	)
}

// Run starts the interactive TUI debugger against m, blocking until the
// user quits.
func Run(m Machine) error {
	_, err := tea.NewProgram(model{m: m}).Run()
	return err
}

// Dump prints a one-shot, non-interactive register/state snapshot,
// useful from the scripting console or a crash handler.
func Dump(m Machine) string {
	return spew.Sdump(m.Regs())
}
