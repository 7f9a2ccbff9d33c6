package ppu

// IsRegister reports whether offset (already reduced into the
// 0x04000000-0x040003FF window by the bus) belongs to the LCD register
// block the pixel engine owns.
func IsRegister(offset uint32) bool { return offset < regBlockSize }

// ReadRegister8 reads one byte of the LCD register block.
func (p *PPU) ReadRegister8(offset uint32) uint8 {
	return p.regs[offset%regBlockSize]
}

// WriteRegister8 writes one byte of the LCD register block, applying the
// reserved-bit masks the hardware reference specifies. pc is the CPU's
// current program counter, needed only to gate the CGB-mode bit of
// DISPCNT.
func (p *PPU) WriteRegister8(offset uint32, value uint8, pc uint32) {
	off := offset % regBlockSize

	switch off {
	case 0x000: // DISPCNT low byte: bit3 is the CGB-mode select.
		const cgbBit = 1 << 3
		old := p.regs[off]
		if pc >= 0x4000 {
			// Outside the boot ROM, the CGB-mode bit is sticky: once set
			// it cannot be cleared by software.
			if old&cgbBit != 0 {
				value = (value &^ cgbBit) | cgbBit
			}
		}
		p.regs[off] = value
		return
	case 0x006, 0x007: // VCOUNT is read-only.
		return
	case 0x009, 0x00B: // BG0CNT/BG1CNT high byte: bit5 (affine wrap) reserved.
		value &= 0xDF
	case 0x048, 0x049: // WININ
		value &= 0x3F
	case 0x04A, 0x04B: // WINOUT
		value &= 0x3F
	}
	p.regs[off] = value

	switch off {
	case 0x028, 0x029, 0x02A, 0x02B: // BG2X
		p.bg2Latch = int32(p.reg32(0x028))
	case 0x02C, 0x02D, 0x02E, 0x02F: // BG2Y
		p.bg2Latch = int32(p.reg32(0x02C))
	case 0x038, 0x039, 0x03A, 0x03B: // BG3X
		p.bg3Latch = int32(p.reg32(0x038))
	case 0x03C, 0x03D, 0x03E, 0x03F: // BG3Y
		p.bg3Latch = int32(p.reg32(0x03C))
	}
}

func (p *PPU) reg32(off uint32) uint32 {
	return uint32(p.regs[off]) | uint32(p.regs[off+1])<<8 |
		uint32(p.regs[off+2])<<16 | uint32(p.regs[off+3])<<24
}

// ReadPaletteRAM8 reads a byte of the 1 KiB palette memory.
func (p *PPU) ReadPaletteRAM8(offset uint32) uint8 { return p.palette[offset&(PaletteSize-1)] }

// WritePaletteRAM8 handles an 8-bit store to palette RAM. Hardware forbids
// byte stores from reaching a single byte: the written value is broadcast
// to both bytes of the containing halfword.
func (p *PPU) WritePaletteRAM8(offset uint32, value uint8) {
	base := offset &^ 1 & (PaletteSize - 1)
	p.palette[base] = value
	p.palette[base+1] = value
}

func (p *PPU) WritePaletteRAM16(offset uint32, value uint16) {
	off := offset & (PaletteSize - 1) &^ 1
	p.palette[off] = uint8(value)
	p.palette[off+1] = uint8(value >> 8)
}

func (p *PPU) WritePaletteRAM32(offset uint32, value uint32) {
	off := offset & (PaletteSize - 1) &^ 3
	p.palette[off] = uint8(value)
	p.palette[off+1] = uint8(value >> 8)
	p.palette[off+2] = uint8(value >> 16)
	p.palette[off+3] = uint8(value >> 24)
}

// ReadVRAM8 reads a byte of Video RAM. VRAM is 96 KiB but mapped into a
// 128 KiB window; offsets 0x18000-0x1FFFF wrap to 0x10000-0x17FFF.
func (p *PPU) ReadVRAM8(offset uint32) uint8 { return p.vram[vramWrap(offset)] }

// WriteVRAM8 stores a byte of VRAM. As with palette RAM, an 8-bit store in
// the bitmap-mode background region is broadcast across the halfword; in
// OBJ tile memory real hardware ignores the byte write, but since sprite
// rendering is out of scope this core applies the simpler, uniform
// broadcast rule everywhere.
func (p *PPU) WriteVRAM8(offset uint32, value uint8) {
	off := vramWrap(offset) &^ 1
	p.vram[off] = value
	p.vram[off+1] = value
}

func (p *PPU) WriteVRAM16(offset uint32, value uint16) {
	off := vramWrap(offset) &^ 1
	p.vram[off] = uint8(value)
	p.vram[off+1] = uint8(value >> 8)
}

func (p *PPU) WriteVRAM32(offset uint32, value uint32) {
	off := vramWrap(offset) &^ 3
	p.vram[off] = uint8(value)
	p.vram[off+1] = uint8(value >> 8)
	p.vram[off+2] = uint8(value >> 16)
	p.vram[off+3] = uint8(value >> 24)
}

func vramWrap(offset uint32) uint32 {
	offset &= 0x1FFFF
	if offset >= 0x18000 {
		offset -= 0x8000
	}
	return offset
}

// ReadOAM8 reads a byte of object-attribute memory.
func (p *PPU) ReadOAM8(offset uint32) uint8 { return p.oam[offset&(OAMSize-1)] }

// WriteOAM8 is a no-op: OAM only accepts 16/32-bit stores on real
// hardware, and sprite rendering (the only consumer of OAM) is out of
// scope here regardless.
func (p *PPU) WriteOAM8(offset uint32, value uint8) {}

func (p *PPU) WriteOAM16(offset uint32, value uint16) {
	off := offset & (OAMSize - 1) &^ 1
	p.oam[off] = uint8(value)
	p.oam[off+1] = uint8(value >> 8)
}

func (p *PPU) WriteOAM32(offset uint32, value uint32) {
	off := offset & (OAMSize - 1) &^ 3
	p.oam[off] = uint8(value)
	p.oam[off+1] = uint8(value >> 8)
	p.oam[off+2] = uint8(value >> 16)
	p.oam[off+3] = uint8(value >> 24)
}
