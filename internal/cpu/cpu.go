package cpu

import (
	"goba/internal/membus/access"
	"goba/util/dbg"
)

// Bus is the narrow view the CPU needs of the memory bus: timed accesses
// plus the one untimed hook used to drive the pixel engine's scanline
// clock from CPU.Cycle.
type Bus interface {
	Read8(addr uint32, kind access.Kind) uint8
	Read16(addr uint32, kind access.Kind) uint16
	Read32(addr uint32, kind access.Kind) uint32
	Write8(addr uint32, value uint8, kind access.Kind)
	Write16(addr uint32, value uint16, kind access.Kind)
	Write32(addr uint32, value uint32, kind access.Kind)
	TickPixelEngine(cycles int)
}

const (
	NonSequential = access.NonSequential
	Sequential    = access.Sequential
	Fast          = access.Fast
)

const (
	ResetBIOSEntry = 0x00000000
	ResetROMEntry  = 0x08000000

	spUser = 0x03007F00
	spIRQ  = 0x03007FA0
	spSVC  = 0x03007FE0
)

// CPU is the ARM7TDMI core: register file, pipeline, and cycle counter.
// It owns the Bus and is the single chokepoint (via Cycle) that both
// bills cycles and drives the pixel engine.
type CPU struct {
	Regs *Registers
	bus  Bus

	pipelineARM   [2]uint32
	pipelineThumb [2]uint16

	cycles uint64
	halted bool
}

// New constructs a CPU wired to bus. Call Reset before stepping.
func New(bus Bus) *CPU {
	return &CPU{Regs: NewRegisters(), bus: bus}
}

// Reset establishes the architectural boot state. skipBIOS selects
// whether execution starts at the BIOS reset vector (0x00000000, letting
// the boot ROM itself perform the stack/IRQ setup) or, for running
// headless ROM tests without a BIOS image, directly at the cartridge
// entry point (0x08000000) with the stack pointers pre-seeded to the
// values the BIOS would otherwise have written.
func (c *CPU) Reset(skipBIOS bool) {
	c.Regs = NewRegisters()
	c.cycles = 0
	c.halted = false

	c.Regs.SetMode(ModeSystem)
	c.Regs.SetThumb(false)
	c.Regs.SetFIQDisabled(true)
	c.Regs.SetIRQDisabled(true)

	for n := uint8(0); n <= 14; n++ {
		c.Regs.Set(n, 0)
	}

	if skipBIOS {
		c.Regs.SetMode(ModeSystem)
		c.Regs.Set(13, spUser)
		c.seedBankedSP(ModeIRQ, spIRQ)
		c.seedBankedSP(ModeSupervisor, spSVC)
		// The real boot ROM leaves FIQ disabled (the GBA never uses it)
		// and IRQ enabled at the CPSR level, gated instead by IME.
		c.Regs.SetFIQDisabled(true)
		c.Regs.SetIRQDisabled(false)
		c.Regs.SetPC(ResetROMEntry)
	} else {
		c.Regs.SetPC(ResetBIOSEntry)
	}

	c.refillARM()
}

// seedBankedSP writes r13 for a privileged mode without disturbing the
// currently active mode, used only by the skip-BIOS boot path.
func (c *CPU) seedBankedSP(mode uint32, sp uint32) {
	cur := c.Regs.Mode()
	c.Regs.SetMode(mode)
	c.Regs.Set(13, sp)
	c.Regs.SetMode(cur)
}

// PC satisfies membus.CPUHooks: the program counter as the bus should
// see it for MMIO side effects, which is simply the raw r15 value (the
// address of the most recently fetched instruction, one instruction
// past the one about to execute), not the value an executing
// instruction sees when it reads r15.
func (c *CPU) PC() uint32 { return c.Regs.PC() }

// Cycle is the single point where executed cycles are accounted and fed
// to the pixel engine. Every cost anywhere in the core — bus wait
// states, internal shift/multiply cycles, pipeline refills — must route
// through here.
func (c *CPU) Cycle(n int) {
	if n <= 0 {
		return
	}
	c.cycles += uint64(n)
	c.bus.TickPixelEngine(n)
}

func (c *CPU) Cycles() uint64 { return c.cycles }
func (c *CPU) Halted() bool   { return c.halted }
func (c *CPU) Halt()          { c.halted = true }
func (c *CPU) Resume()        { c.halted = false }

// refillARM reloads the two-stage ARM pipeline starting at the current
// PC, leaving PC at the address of the second fetched word (one word
// past the first) so that visiblePC() yields the architectural PC+8 for
// the instruction in slot 0.
func (c *CPU) refillARM() {
	pc := c.Regs.PC() &^ 3
	c.pipelineARM[0] = c.bus.Read32(pc, NonSequential)
	c.pipelineARM[1] = c.bus.Read32(pc+4, Sequential)
	c.Regs.SetPC(pc + 4)
}

func (c *CPU) refillThumb() {
	pc := c.Regs.PC() &^ 1
	c.pipelineThumb[0] = c.bus.Read16(pc, NonSequential)
	c.pipelineThumb[1] = c.bus.Read16(pc+2, Sequential)
	c.Regs.SetPC(pc + 2)
}

// visiblePC is the value an executing ARM instruction sees when it reads
// r15 directly: the address of the instruction two ahead of it, i.e.
// current fetch address + 8 in ARM state, +4 in Thumb state. Reset/step
// bookkeeping keeps raw r15 one fetch-step ahead already, so this only
// needs to add one more fetch's worth.
func (c *CPU) visiblePC() uint32 {
	if c.Regs.IsThumb() {
		return c.Regs.PC() + 2
	}
	return c.Regs.PC() + 4
}

// Step executes exactly one instruction (ARM or Thumb, per CPSR's T
// bit), billing its cycles and refilling the pipeline on any control
// flow change. Returns false if the CPU is halted (HALTCNT / SWI-based
// low-power stop), in which case one idle cycle is still billed so
// callers can keep pacing against Step's return value.
func (c *CPU) Step() bool {
	if c.halted {
		c.Cycle(1)
		return false
	}
	if c.Regs.IsThumb() {
		c.stepThumb()
	} else {
		c.stepARM()
	}
	return true
}

func (c *CPU) stepARM() {
	inst := c.pipelineARM[0]
	c.pipelineARM[0] = c.pipelineARM[1]

	pc := c.Regs.PC()
	if c.execARM(inst) {
		// Branch, BX, data-processing into r15, or LDR into r15: the
		// handler already refilled the pipeline from the new PC through
		// flushTo, so the normal one-word advance is skipped.
		return
	}
	c.pipelineARM[1] = c.bus.Read32(pc+4, Sequential)
	c.Regs.SetPC(pc + 4)
}

func (c *CPU) stepThumb() {
	inst := c.pipelineThumb[0]
	c.pipelineThumb[0] = c.pipelineThumb[1]

	pc := c.Regs.PC()
	if c.execThumb(inst) {
		// The handler already refilled the pipeline through flushTo.
		return
	}
	c.pipelineThumb[1] = c.bus.Read16(pc+2, Sequential)
	c.Regs.SetPC(pc + 2)
}

// flushTo redirects the pipeline to a new address, used by every
// instruction that writes r15 (branches, BX, data-processing with
// Rd=15, LDR/LDM loading r15). It refills the pipeline itself; the
// instruction handler then reports true so that stepARM/stepThumb skip
// their normal advance.
func (c *CPU) flushTo(addr uint32, thumb bool) {
	c.Regs.SetThumb(thumb)
	c.Regs.SetPC(addr)
	if thumb {
		c.refillThumb()
	} else {
		c.refillARM()
	}
}

func (c *CPU) debugf(format string, args ...interface{}) {
	dbg.Printf(format, args...)
}
