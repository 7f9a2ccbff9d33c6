// Package scripting embeds a small Lua console for interactively peeking
// and poking emulated memory and setting breakpoints while a ROM runs,
// using gopher-lua so scripts can be ordinary .lua files rather than a
// bespoke command language.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"goba/internal/membus/access"
)

// MemoryBus is the narrow view the console needs of the system bus.
type MemoryBus interface {
	Read8(addr uint32, kind access.Kind) uint8
	Write8(addr uint32, value uint8, kind access.Kind)
	Read32(addr uint32, kind access.Kind) uint32
	Write32(addr uint32, value uint32, kind access.Kind)
}

// Breakpoints collects addresses a script has requested the core halt
// at; the caller (the main loop or the monitor) is responsible for
// checking Hit after every Step.
type Breakpoints struct {
	set map[uint32]bool
}

func NewBreakpoints() *Breakpoints { return &Breakpoints{set: map[uint32]bool{}} }

func (b *Breakpoints) Add(addr uint32)    { b.set[addr] = true }
func (b *Breakpoints) Remove(addr uint32) { delete(b.set, addr) }
func (b *Breakpoints) Hit(pc uint32) bool { return b.set[pc] }

// Console wraps a Lua state pre-populated with mem.read8/mem.write8/
// mem.read32/mem.write32 and bp.add/bp.remove functions bound to a
// running machine.
type Console struct {
	L  *lua.LState
	bp *Breakpoints
}

// New creates a console bound to bus and bp. Call Close when done.
func New(bus MemoryBus, bp *Breakpoints) *Console {
	L := lua.NewState()
	c := &Console{L: L, bp: bp}

	memTable := L.NewTable()
	L.SetFuncs(memTable, map[string]lua.LGFunction{
		"read8": func(L *lua.LState) int {
			addr := uint32(L.CheckInt64(1))
			L.Push(lua.LNumber(bus.Read8(addr, access.NonSequential)))
			return 1
		},
		"write8": func(L *lua.LState) int {
			addr := uint32(L.CheckInt64(1))
			value := uint8(L.CheckInt64(2))
			bus.Write8(addr, value, access.NonSequential)
			return 0
		},
		"read32": func(L *lua.LState) int {
			addr := uint32(L.CheckInt64(1))
			L.Push(lua.LNumber(bus.Read32(addr, access.NonSequential)))
			return 1
		},
		"write32": func(L *lua.LState) int {
			addr := uint32(L.CheckInt64(1))
			value := uint32(L.CheckInt64(2))
			bus.Write32(addr, value, access.NonSequential)
			return 0
		},
	})
	L.SetGlobal("mem", memTable)

	bpTable := L.NewTable()
	L.SetFuncs(bpTable, map[string]lua.LGFunction{
		"add": func(L *lua.LState) int {
			bp.Add(uint32(L.CheckInt64(1)))
			return 0
		},
		"remove": func(L *lua.LState) int {
			bp.Remove(uint32(L.CheckInt64(1)))
			return 0
		},
	})
	L.SetGlobal("bp", bpTable)

	return c
}

func (c *Console) Close() { c.L.Close() }

// RunFile loads and executes a Lua script file against the bound
// machine, typically used to set up a batch of breakpoints and memory
// patches before the core starts running.
func (c *Console) RunFile(path string) error {
	if err := c.L.DoFile(path); err != nil {
		return fmt.Errorf("scripting: run %s: %w", path, err)
	}
	return nil
}

// Eval runs a single line of Lua, used by an interactive REPL.
func (c *Console) Eval(line string) error {
	return c.L.DoString(line)
}
