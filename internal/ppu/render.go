package ppu

import "goba/internal/membus/access"

const (
	mode3VRAMBase = 0x06000000
	mode4VRAMBase = 0x06000000
	palRAMBase    = 0x05000000

	placeholderGray = 0xFF808080
)

// renderScanline paints one visible line (0-159) of the framebuffer,
// reading its source pixels through the bus in Fast mode: rendering never
// bills cycles and never re-enters the CPU.
func (p *PPU) renderScanline(line uint16) {
	switch p.bgMode() {
	case 3:
		p.renderMode3(line)
	case 4:
		p.renderMode4(line)
	default:
		p.fillSolid(line, placeholderGray)
	}
}

func (p *PPU) fillSolid(line uint16, argb uint32) {
	row := int(line) * ScreenWidth
	for x := 0; x < ScreenWidth; x++ {
		p.fb[row+x] = argb
	}
}

// renderMode3 reads a 240x160 16-bpp direct-color bitmap starting at
// 0x06000000, two bytes per pixel, BGR555 packed.
func (p *PPU) renderMode3(line uint16) {
	row := int(line) * ScreenWidth
	base := uint32(mode3VRAMBase) + uint32(line)*ScreenWidth*2
	for x := 0; x < ScreenWidth; x++ {
		addr := base + uint32(x)*2
		pixel := p.bus.Read16(addr, access.Fast)
		p.fb[row+x] = bgr555ToARGB(pixel)
	}
}

// renderMode4 reads an 8-bpp paletted bitmap starting at 0x06000000 (one
// of two swappable frames is out of scope here; frame 0 only), looking up
// colors in the 16-bpp palette at 0x05000000.
func (p *PPU) renderMode4(line uint16) {
	row := int(line) * ScreenWidth
	base := uint32(mode4VRAMBase) + uint32(line)*ScreenWidth
	for x := 0; x < ScreenWidth; x++ {
		idx := p.bus.Read8(base+uint32(x), access.Fast)
		pixel := p.bus.Read16(palRAMBase+uint32(idx)*2, access.Fast)
		p.fb[row+x] = bgr555ToARGB(pixel)
	}
}

// bgr555ToARGB unpacks a 16-bit BGR555 color (bits: 0BBBBBGGGGGRRRRR,
// with R in the low 5 bits, matching VRAM's little-endian packing used by
// mode 3/4) into an opaque ARGB8888 pixel. Each 5-bit channel is extended
// to 8 bits with its own top 3 bits, the standard GBA->RGB888 expansion.
func bgr555ToARGB(color16 uint16) uint32 {
	r5 := uint32(color16 & 0x1F)
	g5 := uint32((color16 >> 5) & 0x1F)
	b5 := uint32((color16 >> 10) & 0x1F)

	r8 := (r5 << 3) | (r5 >> 2)
	g8 := (g5 << 3) | (g5 >> 2)
	b8 := (b5 << 3) | (b5 >> 2)

	return 0xFF000000 | (r8 << 16) | (g8 << 8) | b8
}
