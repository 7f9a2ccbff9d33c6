package bus

import (
	"testing"

	"goba/internal/cartridge"
	"goba/internal/ioregs"
	"goba/internal/membus/access"
	"goba/internal/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPPU is the minimal PixelEngine double: it records register/VRAM
// writes in flat arrays without any mode-3/4 rendering, since bus tests
// care about address decode and timing, not pixel output.
type stubPPU struct {
	regs    [0x60]byte
	palette [0x400]byte
	vram    [0x18000]byte
	oam     [0x400]byte
}

func (p *stubPPU) ReadRegister8(offset uint32) uint8 { return p.regs[offset%0x60] }
func (p *stubPPU) WriteRegister8(offset uint32, value uint8, pc uint32) {
	p.regs[offset%0x60] = value
}
func (p *stubPPU) ReadPaletteRAM8(offset uint32) uint8         { return p.palette[offset&0x3FF] }
func (p *stubPPU) WritePaletteRAM8(offset uint32, value uint8) { p.palette[offset&0x3FF] = value }
func (p *stubPPU) WritePaletteRAM16(offset uint32, value uint16) {
	off := offset & 0x3FF &^ 1
	p.palette[off] = uint8(value)
	p.palette[off+1] = uint8(value >> 8)
}
func (p *stubPPU) WritePaletteRAM32(offset uint32, value uint32) {
	off := offset & 0x3FF &^ 3
	p.palette[off] = uint8(value)
	p.palette[off+1] = uint8(value >> 8)
	p.palette[off+2] = uint8(value >> 16)
	p.palette[off+3] = uint8(value >> 24)
}
func (p *stubPPU) ReadVRAM8(offset uint32) uint8          { return p.vram[offset&0x1FFFF] }
func (p *stubPPU) WriteVRAM8(offset uint32, value uint8)  { p.vram[offset&0x1FFFF] = value }
func (p *stubPPU) WriteVRAM16(offset uint32, value uint16) {
	off := offset & 0x1FFFF &^ 1
	p.vram[off] = uint8(value)
	p.vram[off+1] = uint8(value >> 8)
}
func (p *stubPPU) WriteVRAM32(offset uint32, value uint32) {
	off := offset & 0x1FFFF &^ 3
	p.vram[off] = uint8(value)
	p.vram[off+1] = uint8(value >> 8)
	p.vram[off+2] = uint8(value >> 16)
	p.vram[off+3] = uint8(value >> 24)
}
func (p *stubPPU) ReadOAM8(offset uint32) uint8           { return p.oam[offset&0x3FF] }
func (p *stubPPU) WriteOAM8(offset uint32, value uint8)   { p.oam[offset&0x3FF] = value }
func (p *stubPPU) WriteOAM16(offset uint32, value uint16) {
	off := offset & 0x3FF &^ 1
	p.oam[off] = uint8(value)
	p.oam[off+1] = uint8(value >> 8)
}
func (p *stubPPU) WriteOAM32(offset uint32, value uint32) {
	off := offset & 0x3FF &^ 3
	p.oam[off] = uint8(value)
	p.oam[off+1] = uint8(value >> 8)
	p.oam[off+2] = uint8(value >> 16)
	p.oam[off+3] = uint8(value >> 24)
}
func (p *stubPPU) Tick(cycles int) {}

// stubCPU records every Cycle(n) call so tests can assert billed totals.
type stubCPU struct {
	pc     uint32
	cycles int
}

func (c *stubCPU) Cycle(n int)   { c.cycles += n }
func (c *stubCPU) PC() uint32    { return c.pc }

func newTestBus(t *testing.T, rom []byte) (*Bus, *stubCPU) {
	t.Helper()
	b := New(memory.NewBIOS(), memory.NewEWRAM(), memory.NewIWRAM(), cartridge.New(rom), ioregs.New(), &stubPPU{})
	cpu := &stubCPU{}
	b.AttachCPU(cpu)
	return b, cpu
}

func TestRegionDecodeRoundTrip(t *testing.T) {
	b, _ := newTestBus(t, make([]byte, 0x100))

	b.Write8(0x02001234, 0xAB, access.Fast)
	assert.Equal(t, uint8(0xAB), b.Read8(0x02001234, access.Fast))

	b.Write8(0x03000010, 0xCD, access.Fast)
	assert.Equal(t, uint8(0xCD), b.Read8(0x03000010, access.Fast))

	b.Write8(0x0E000000, 0x42, access.Fast)
	assert.Equal(t, uint8(0x42), b.Read8(0x0E000000, access.Fast))

	// BIOS and ROM are read-only: writes are no-ops.
	b.Write8(0x00000000, 0xFF, access.Fast)
	assert.Equal(t, uint8(0), b.Read8(0x00000000, access.Fast))
	b.Write8(0x08000000, 0xFF, access.Fast)
	assert.Equal(t, uint8(0), b.Read8(0x08000000, access.Fast))
}

func TestRead32MisalignedRotate(t *testing.T) {
	b, _ := newTestBus(t, make([]byte, 0x100))

	b.Write32(0x02000000, 0xDEADBEEF, access.Fast)
	v := b.Read32(0x02000003, access.Fast)
	assert.Equal(t, uint32(0xADBEEFDE), v)

	// Aligned access rotates by zero.
	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(0x02000000, access.Fast))
}

func TestUpdateWaitsDefaultZero(t *testing.T) {
	b, _ := newTestBus(t, make([]byte, 0x100))

	// WAITCNT's reset value is 0: field 0 of every 2-bit N-cycle
	// selector decodes to the first table entry (4 cycles), and the ws0
	// S field 0 decodes to 2 cycles.
	assert.Equal(t, 4, b.wait16[0][regionROM0])
	assert.Equal(t, 2, b.wait16[1][regionROM0])
	assert.Equal(t, 6, b.wait32[0][regionROM0]) // n+s
	assert.Equal(t, 4, b.wait32[1][regionROM0]) // 2*s
}

func TestUpdateWaitsRecomputesFromWaitcnt(t *testing.T) {
	b, _ := newTestBus(t, make([]byte, 0x100))

	// bits0-1 = SRAM field = 11 (8 cycles), bits2-3 = ws0 N field = 11 (8
	// cycles), bit4 = ws0 S field = 1 (1 cycle).
	b.io.Set(ioregs.WAITCNTLo, 0x1F)
	b.UpdateWaits()

	waitcnt := b.io.WaitcntWord()
	nTable := [4]int{4, 3, 2, 8}
	s0Table := [2]int{2, 1}
	wantSRAM := nTable[waitcnt&0x3]
	wantN := nTable[(waitcnt>>2)&0x3]
	wantS := s0Table[(waitcnt>>4)&0x1]

	assert.Equal(t, wantSRAM, b.wait16[0][regionSRAM])
	assert.Equal(t, wantN, b.wait16[0][regionROM0])
	assert.Equal(t, wantS, b.wait16[1][regionROM0])
}

func TestCycleBillingArchitecturalSum(t *testing.T) {
	b, cpu := newTestBus(t, make([]byte, 0x100))

	// Default WAITCNT=0: a non-sequential 32-bit ROM read bills n+s=4+2=6,
	// a following sequential 32-bit ROM read bills 2*s=4. Total matches
	// the architectural sum of 10 cycles for this two-access mix.
	b.Read32(cartridge.ROMStart0, access.NonSequential)
	b.Read32(cartridge.ROMStart0+4, access.Sequential)
	assert.Equal(t, 10, cpu.cycles)
}

func TestFastAccessNeverBills(t *testing.T) {
	b, cpu := newTestBus(t, make([]byte, 0x100))

	b.Read32(cartridge.ROMStart0, access.Fast)
	b.Read8(0x02000000, access.Fast)
	require.Equal(t, 0, cpu.cycles)
}
