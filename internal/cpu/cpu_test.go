package cpu

import (
	"testing"

	"goba/internal/membus/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatTestBus is a trivial byte-addressed RAM implementing the cpu.Bus
// interface, large enough to hold short test programs without caring
// about GBA memory-map regions.
type flatTestBus struct {
	mem [1 << 20]byte
}

func (b *flatTestBus) Read8(addr uint32, _ access.Kind) uint8 { return b.mem[addr&0xFFFFF] }
func (b *flatTestBus) Read16(addr uint32, _ access.Kind) uint16 {
	a := addr &^ 1 & 0xFFFFF
	return uint16(b.mem[a]) | uint16(b.mem[a+1])<<8
}
// Read32 mirrors the real bus's misaligned-access contract: the word is
// fetched from the aligned address and rotated right by (addr&3)*8, the
// same quirk CPU code trusts every Bus implementation to apply.
func (b *flatTestBus) Read32(addr uint32, _ access.Kind) uint32 {
	a := addr &^ 3 & 0xFFFFF
	v := uint32(b.mem[a]) | uint32(b.mem[a+1])<<8 | uint32(b.mem[a+2])<<16 | uint32(b.mem[a+3])<<24
	rot := (addr & 3) * 8
	if rot == 0 {
		return v
	}
	return (v >> rot) | (v << (32 - rot))
}
func (b *flatTestBus) Write8(addr uint32, v uint8, _ access.Kind) { b.mem[addr&0xFFFFF] = v }
func (b *flatTestBus) Write16(addr uint32, v uint16, _ access.Kind) {
	a := addr &^ 1 & 0xFFFFF
	b.mem[a] = uint8(v)
	b.mem[a+1] = uint8(v >> 8)
}
func (b *flatTestBus) Write32(addr uint32, v uint32, _ access.Kind) {
	a := addr &^ 3 & 0xFFFFF
	b.mem[a] = uint8(v)
	b.mem[a+1] = uint8(v >> 8)
	b.mem[a+2] = uint8(v >> 16)
	b.mem[a+3] = uint8(v >> 24)
}
func (b *flatTestBus) TickPixelEngine(cycles int) {}

func newTestCPU() (*CPU, *flatTestBus) {
	bus := &flatTestBus{}
	c := New(bus)
	c.Reset(true)
	return c, bus
}

func (b *flatTestBus) loadARM(addr uint32, words ...uint32) {
	for i, w := range words {
		b.Write32(addr+uint32(i*4), w, NonSequential)
	}
}

// loadProgram writes words starting at the CPU's current instruction
// address and re-primes the pipeline, since Reset already fetched
// (empty) memory before the test had a chance to write it.
func loadProgram(c *CPU, bus *flatTestBus, words ...uint32) {
	bus.loadARM(c.Regs.PC()-4, words...)
	c.pipelineARM[0] = c.bus.Read32(c.Regs.PC()-4, NonSequential)
	c.pipelineARM[1] = c.bus.Read32(c.Regs.PC(), NonSequential)
}

func TestResetSkipBIOSState(t *testing.T) {
	c, _ := newTestCPU()
	require.Equal(t, uint32(ResetROMEntry+4), c.Regs.PC())
	assert.Equal(t, uint32(spUser), c.Regs.Get(13))
	assert.False(t, c.Regs.IsThumb())
	assert.Equal(t, uint32(ModeSystem), c.Regs.Mode())
}

// TestResetSkipBIOSLiteralState checks skip-BIOS reset against the exact
// literal values a real boot ROM leaves behind: System mode, FIQ
// disabled (never used on this hardware), IRQ enabled at the CPSR
// level, and every banked stack pointer pre-seeded.
func TestResetSkipBIOSLiteralState(t *testing.T) {
	c, _ := newTestCPU()

	assert.Equal(t, uint32(0x08000000), c.Regs.PC()-4)
	assert.Equal(t, uint32(0x03007F00), c.Regs.Get(13))
	assert.Equal(t, uint32(0x0000001F|0x40), c.Regs.CPSR())

	c.Regs.SetMode(ModeSupervisor)
	assert.Equal(t, uint32(0x03007FE0), c.Regs.Get(13))
	c.Regs.SetMode(ModeIRQ)
	assert.Equal(t, uint32(0x03007FA0), c.Regs.Get(13))
	c.Regs.SetMode(ModeSystem)
}

// TestRegisterBankingRoundTrip writes r13/r14 under one privileged mode,
// switches away and back through a second mode, and checks the first
// mode's banked values survived untouched.
func TestRegisterBankingRoundTrip(t *testing.T) {
	c, _ := newTestCPU()

	c.Regs.SetMode(ModeIRQ)
	c.Regs.Set(13, 0x03001000)
	c.Regs.Set(14, 0x08001234)

	c.Regs.SetMode(ModeSupervisor)
	c.Regs.Set(13, 0x03002000)
	c.Regs.Set(14, 0x08005678)

	c.Regs.SetMode(ModeIRQ)
	assert.Equal(t, uint32(0x03001000), c.Regs.Get(13))
	assert.Equal(t, uint32(0x08001234), c.Regs.Get(14))

	c.Regs.SetMode(ModeSupervisor)
	assert.Equal(t, uint32(0x03002000), c.Regs.Get(13))
	assert.Equal(t, uint32(0x08005678), c.Regs.Get(14))
}

// kindLoggingBus records the access.Kind of every 32-bit read so a test
// can check the non-sequential-then-sequential pattern a pipeline refill
// must produce.
type kindLoggingBus struct {
	flatTestBus
	log []access.Kind
}

func (b *kindLoggingBus) Read32(addr uint32, kind access.Kind) uint32 {
	b.log = append(b.log, kind)
	return b.flatTestBus.Read32(addr, kind)
}

func TestPipelineRefillAccessKindSequencing(t *testing.T) {
	bus := &kindLoggingBus{}
	c := New(bus)
	c.Reset(true)

	bus.loadARM(c.Regs.PC()-4, 0xEA000000) // B #0
	c.pipelineARM[0] = c.bus.Read32(c.Regs.PC()-4, NonSequential)
	c.pipelineARM[1] = c.bus.Read32(c.Regs.PC(), NonSequential)
	bus.log = nil

	c.Step()

	require.Len(t, bus.log, 2)
	assert.Equal(t, access.NonSequential, bus.log[0])
	assert.Equal(t, access.Sequential, bus.log[1])
}

// TestMisalignedLDRRotate exercises the literal scenario: a word load
// from an address with its low two bits set returns the word rotated
// right by (addr&3)*8, never a straight unrotated read.
func TestMisalignedLDRRotate(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x02000100, 0xDEADBEEF, NonSequential)
	c.Regs.Set(1, 0x02000103)
	loadProgram(c, bus, 0xE5910000) // LDR r0, [r1]

	c.Step()

	assert.Equal(t, uint32(0xADBEEFDE), c.Regs.Get(0))
}

// TestLoadWordWritebackSkippedWhenBaseEqualsDest covers the Rd==Rn edge
// case for LDR: the loaded value must win over the address writeback.
func TestLoadWordWritebackSkippedWhenBaseEqualsDest(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x02000104, 0x12345678, NonSequential)
	c.Regs.Set(1, 0x02000100)
	loadProgram(c, bus, 0xE5B11004) // LDR r1, [r1, #4]!

	c.Step()

	assert.Equal(t, uint32(0x12345678), c.Regs.Get(1))
}

// TestLoadHalfwordWritebackSkippedWhenBaseEqualsDest is the same edge
// case for LDRH, which shares the single-transfer family's writeback
// logic in a structurally separate function.
func TestLoadHalfwordWritebackSkippedWhenBaseEqualsDest(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write16(0x02000112, 0xBEEF, NonSequential)
	c.Regs.Set(1, 0x02000110)
	loadProgram(c, bus, 0xE1F110B2) // LDRH r1, [r1, #2]!

	c.Step()

	assert.Equal(t, uint32(0x0000BEEF), c.Regs.Get(1))
}

// TestEmptyListBlockTransferMovesR15AndAdvancesBaseBySixteenWords covers
// the documented LDM/STM edge case: an empty register list still
// transfers r15 and the base register still moves by 16 words, as if
// all 16 registers had been listed.
func TestEmptyListBlockTransferMovesR15AndAdvancesBaseBySixteenWords(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0x02000100, 0x08000200, NonSequential)
	c.Regs.Set(0, 0x02000100)
	loadProgram(c, bus, 0xE8B00000) // LDM r0!, {}

	c.Step()

	assert.Equal(t, uint32(0x02000140), c.Regs.Get(0))
	assert.Equal(t, uint32(0x08000200), c.Regs.PC()-4)
}

// TestBranchExchangeSwitchesToThumb is scenario S5: BX into an odd
// target address enters Thumb state and refills from the target with
// its low bit cleared.
func TestBranchExchangeSwitchesToThumb(t *testing.T) {
	c, bus := newTestCPU()
	c.Regs.Set(0, 0x08000001)
	loadProgram(c, bus, 0xE12FFF10) // BX r0

	c.Step()

	assert.True(t, c.Regs.IsThumb())
	assert.Equal(t, uint32(0x08000000), c.Regs.PC()-2)
}

func TestBarrelShiftLSLCorners(t *testing.T) {
	v, carry := shiftLSLFn(0x1, 31, false)
	assert.Equal(t, uint32(1<<31), v)
	assert.False(t, carry)

	v, carry = shiftLSLFn(0x1, 32, false)
	assert.Equal(t, uint32(0), v)
	assert.True(t, carry)

	v, carry = shiftLSLFn(0xFFFFFFFF, 33, false)
	assert.Equal(t, uint32(0), v)
	assert.False(t, carry)
}

func TestBarrelShiftLSRImmediateZeroMeansThirtyTwo(t *testing.T) {
	v, carry := shiftLSRFn(1<<31, 0, true, false)
	assert.Equal(t, uint32(0), v)
	assert.True(t, carry)
}

func TestBarrelShiftRRX(t *testing.T) {
	v, carry := shiftRORFn(0x2, 0, true, true)
	assert.Equal(t, uint32(0x80000001), v)
	assert.False(t, carry)
}

func TestDataProcessingAddSetsFlags(t *testing.T) {
	c, bus := newTestCPU()
	// MOV r0, #0xFF ; ADDS r1, r0, r0
	loadProgram(c, bus,
		0xE3A000FF,
		0xE0901000,
	)
	c.Step()
	c.Step()
	assert.Equal(t, uint32(0x1FE), c.Regs.Get(1))
	assert.False(t, c.Regs.FlagC())
}

func TestBranchUpdatesPC(t *testing.T) {
	c, bus := newTestCPU()
	start := c.Regs.PC() - 4
	loadProgram(c, bus, 0xEA000000) // B #0 (branch to PC+8)
	c.Step()
	assert.Equal(t, start+8, c.Regs.PC()-4)
}

func TestThumbBranchUnconditional(t *testing.T) {
	c, bus := newTestCPU()
	c.Regs.SetThumb(true)
	start := uint32(ResetROMEntry)
	bus.Write16(start, 0xE7FE, Sequential) // B $ (offset -2 halfwords -> branch to self)
	c.Regs.SetPC(start)
	c.refillThumb()
	c.Step()
	assert.Equal(t, start, c.Regs.PC()-2)
}

func TestConditionEvalNeverFires(t *testing.T) {
	c, _ := newTestCPU()
	assert.False(t, c.evalCondition(condNV))
	assert.True(t, c.evalCondition(condAL))
}

func TestMultiplyLongUnsigned(t *testing.T) {
	c, bus := newTestCPU()
	// MOV r0, #0xFFFFFFFF via MVN r0, #0 ; MOV r1, r0 ; UMULL r2,r3,r0,r1
	loadProgram(c, bus,
		0xE3E00000, // MVN r0, #0
		0xE1A01000, // MOV r1, r0
		0xE0832190, // UMULL r2, r3, r0, r1
	)
	c.Step()
	c.Step()
	c.Step()
	got := uint64(c.Regs.Get(3))<<32 | uint64(c.Regs.Get(2))
	assert.Equal(t, uint64(0xFFFFFFFE00000001), got)
}
