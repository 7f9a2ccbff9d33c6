package ppu

import (
	"testing"

	"goba/internal/membus/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFastBus is a flat VRAM/palette double satisfying FastBus, addressed
// the same way the real bus decodes mode 3/4 bitmap and palette reads.
type fakeFastBus struct {
	vram [VRAMSize]byte
	pal  [PaletteSize]byte
}

func (f *fakeFastBus) Read8(addr uint32, _ access.Kind) uint8 {
	switch addr >> 24 {
	case 0x05:
		return f.pal[addr&(PaletteSize-1)]
	case 0x06:
		return f.vram[addr&(VRAMSize-1)]
	default:
		return 0
	}
}

func (f *fakeFastBus) Read16(addr uint32, _ access.Kind) uint16 {
	lo := uint16(f.Read8(addr, access.Fast))
	hi := uint16(f.Read8(addr+1, access.Fast))
	return lo | hi<<8
}

func (f *fakeFastBus) writeVRAM16(offset uint32, v uint16) {
	f.vram[offset] = uint8(v)
	f.vram[offset+1] = uint8(v >> 8)
}

func (f *fakeFastBus) writePal16(offset uint32, v uint16) {
	f.pal[offset] = uint8(v)
	f.pal[offset+1] = uint8(v >> 8)
}

func newTestPPU() (*PPU, *fakeFastBus) {
	p := New()
	bus := &fakeFastBus{}
	p.AttachBus(bus)
	return p, bus
}

// setDispcnt writes both bytes of DISPCNT directly through the register
// interface, mirroring how the bus routes an MMIO word store.
func setDispcnt(p *PPU, value uint16) {
	p.WriteRegister8(0x000, uint8(value), 0)
	p.WriteRegister8(0x001, uint8(value>>8), 0)
}

func tickFullFrame(p *PPU) {
	for i := 0; i < scanlinesPerFrame; i++ {
		p.Tick(dotsPerScanline)
	}
}

func TestBgr555ToARGBWhiteIsOpaque(t *testing.T) {
	assert.Equal(t, uint32(0xFFFFFFFF), bgr555ToARGB(0x7FFF))
}

func TestBgr555ToARGBChannelExpansion(t *testing.T) {
	// Pure red (5-bit max in the low channel only).
	assert.Equal(t, uint32(0xFFFF0000), bgr555ToARGB(0x001F))
}

func TestMode3RenderPlotsDirectColorPixel(t *testing.T) {
	p, bus := newTestPPU()
	setDispcnt(p, 0x0403) // mode 3 + BG2 enable
	bus.writeVRAM16(0, 0x7FFF)

	tickFullFrame(p)

	require.True(t, p.FrameReady())
	assert.Equal(t, uint32(0xFFFFFFFF), p.Frame()[0])
}

func TestMode3RenderLeavesUnwrittenPixelsBlack(t *testing.T) {
	p, _ := newTestPPU()
	setDispcnt(p, 0x0403)

	tickFullFrame(p)

	assert.Equal(t, uint32(0xFF000000), p.Frame()[1])
}

func TestMode4RenderLooksUpPalette(t *testing.T) {
	p, bus := newTestPPU()
	setDispcnt(p, 0x0404) // mode 4 + BG2 enable
	bus.vram[0] = 5
	bus.writePal16(5*2, 0x7FFF)

	tickFullFrame(p)

	assert.Equal(t, uint32(0xFFFFFFFF), p.Frame()[0])
}

func TestUnimplementedModeFillsPlaceholderGray(t *testing.T) {
	p, _ := newTestPPU()
	setDispcnt(p, 0x0000) // mode 0, tile-based, out of scope

	tickFullFrame(p)

	assert.Equal(t, uint32(placeholderGray), p.Frame()[0])
}

func TestVBlankFlagSetsAtScanline160(t *testing.T) {
	p, _ := newTestPPU()

	for i := 0; i < ScreenHeight; i++ {
		p.Tick(dotsPerScanline)
	}

	dispstat := p.reg16(0x004)
	assert.Equal(t, uint16(1), dispstat&1)
	assert.Equal(t, uint16(ScreenHeight), p.Line())
}

func TestVBlankFlagClearsAtFrameWrap(t *testing.T) {
	p, _ := newTestPPU()

	tickFullFrame(p)

	dispstat := p.reg16(0x004)
	assert.Equal(t, uint16(0), dispstat&1)
	assert.Equal(t, uint16(0), p.Line())
}
