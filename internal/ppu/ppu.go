// Package ppu is the scanline-based pixel engine: it owns Palette RAM,
// Video RAM, OAM, and the LCD register block, advances a dot counter off
// the cycles the CPU hands it through the bus, and renders bitmap modes 3
// and 4 into a 240x160 ARGB8888 framebuffer. Tile/sprite/affine rendering
// (modes 0-2, 5) is out of scope; those modes paint a solid placeholder
// color, matching the hardware reference's "mode not implemented" gray
// screens seen in early bring-up builds.
package ppu

import "goba/internal/membus/access"

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	dotsPerScanline = 1232
	scanlinesPerFrame = 228

	PaletteSize = 0x400   // 1 KiB
	VRAMSize    = 0x18000 // 96 KiB
	VRAMWrapLo  = 0x10000
	OAMSize     = 0x400 // 1 KiB

	regBlockSize = 0x60 // 0x04000000-0x0400005F, the LCD register window
)

// FastBus is the narrow view of the bus the pixel engine needs while
// rendering: reads only, no cycle accounting (AccessFast), so that
// rendering never re-enters the CPU or the timing model.
type FastBus interface {
	Read8(addr uint32, kind access.Kind) uint8
	Read16(addr uint32, kind access.Kind) uint16
}

// PPU is the GBA pixel engine.
type PPU struct {
	bus FastBus

	regs [regBlockSize]byte

	palette [PaletteSize]byte
	vram    [VRAMSize]byte
	oam     [OAMSize]byte

	// Affine reference-point latches for BG2/BG3, reloaded from BG2X/Y and
	// BG3X/Y by WriteRegister8 whenever those registers are written. Not
	// consumed by mode 3/4 rendering and not exported.
	bg2Latch, bg3Latch int32

	dots  uint32
	line  uint16
	frame uint64

	frameReady bool
	fb         [ScreenWidth * ScreenHeight]uint32 // packed ARGB8888
}

// New returns a PPU with all registers and memories zeroed.
func New() *PPU { return &PPU{} }

// AttachBus gives the pixel engine a non-owning reference to the bus it
// will issue Fast-mode reads against while rendering a scanline.
func (p *PPU) AttachBus(bus FastBus) { p.bus = bus }

// Line returns the current scanline (0-227).
func (p *PPU) Line() uint16 { return p.line }

// Frame returns the packed ARGB8888 framebuffer for the last fully rendered
// frame (240x160, row-major).
func (p *PPU) Frame() []uint32 { return p.fb[:] }

// FrameReady reports whether a new frame has completed since the last
// ConsumeFrame call.
func (p *PPU) FrameReady() bool { return p.frameReady }

// ConsumeFrame clears the frame-ready flag; callers (the main loop, a
// presenter) call this after they've copied out the framebuffer.
func (p *PPU) ConsumeFrame() { p.frameReady = false }

func (p *PPU) dispcnt() uint16 { return p.reg16(0x000) }
func (p *PPU) bgMode() int     { return int(p.dispcnt() & 0x7) }

// Tick advances the dot counter by cycles and renders/retraces as scanline
// boundaries are crossed. Only whole-scanline crossings are modeled; a
// caller ticking by more than one scanline's worth of dots in a single
// call still produces the correct number of rendered/retraced lines.
func (p *PPU) Tick(cycles int) {
	p.dots += uint32(cycles)
	for p.dots >= dotsPerScanline {
		p.dots -= dotsPerScanline
		p.advanceLine()
	}
}

func (p *PPU) advanceLine() {
	if p.line < ScreenHeight {
		p.renderScanline(p.line)
	}
	p.line++
	switch p.line {
	case ScreenHeight:
		p.setVBlank(true)
		p.frameReady = true
		p.frame++
	case scanlinesPerFrame:
		p.setVBlank(false)
		p.line = 0
	}
	p.updateVCountMatch()
}

func (p *PPU) setVBlank(set bool) {
	dispstat := p.reg16(0x004)
	if set {
		dispstat |= 1 << 0
	} else {
		dispstat &^= 1 << 0
	}
	p.setReg16(0x004, dispstat)
}

func (p *PPU) updateVCountMatch() {
	dispstat := p.reg16(0x004)
	target := uint16(dispstat >> 8)
	if p.line == target {
		dispstat |= 1 << 2
	} else {
		dispstat &^= 1 << 2
	}
	p.setReg16(0x004, dispstat)
	// VCOUNT register mirrors the current scanline.
	p.regs[0x006] = uint8(p.line)
	p.regs[0x007] = 0
}

func (p *PPU) reg16(off uint32) uint16 {
	return uint16(p.regs[off]) | uint16(p.regs[off+1])<<8
}

func (p *PPU) setReg16(off uint32, v uint16) {
	p.regs[off] = uint8(v)
	p.regs[off+1] = uint8(v >> 8)
}
