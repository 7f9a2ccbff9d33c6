// Package cartridge models the Game Pak: up to 32 MiB of read-only ROM
// mirrored across three wait-state regions (0x08000000, 0x0A000000,
// 0x0C000000), plus an 8-bit-only backup RAM region.
package cartridge

const (
	ROMStart0 = 0x08000000
	ROMStart1 = 0x0A000000
	ROMStart2 = 0x0C000000
	ROMBank   = 0x02000000 // 32 MiB per mirror
	MaxROM    = 32 * 1024 * 1024

	SRAMStart = 0x0E000000
	SRAMSize  = 0x10000 // 64 KiB, often smaller in real carts
	SRAMMask  = SRAMSize - 1
)

// Cartridge owns the Game Pak ROM image and its battery-backed SRAM.
type Cartridge struct {
	rom  []byte
	sram [SRAMSize]byte
}

// New wraps a raw cartridge ROM image. data is used as-is (not copied) and
// must not be mutated by the caller afterward.
func New(data []byte) *Cartridge {
	return &Cartridge{rom: data}
}

// ReadROM8 reads a byte from any of the three wait-state mirrors; bankOffset
// is the address already reduced modulo ROMBank by the bus.
func (c *Cartridge) ReadROM8(bankOffset uint32) uint8 {
	if int(bankOffset) >= len(c.rom) {
		return 0
	}
	return c.rom[bankOffset]
}

// ReadSRAM8 reads a byte of backup RAM. SRAM is an 8-bit device: 16/32-bit
// accesses are the bus's responsibility to refuse or replicate.
func (c *Cartridge) ReadSRAM8(offset uint32) uint8 { return c.sram[offset&SRAMMask] }

func (c *Cartridge) WriteSRAM8(offset uint32, value uint8) { c.sram[offset&SRAMMask] = value }

// Size reports the loaded ROM's length in bytes.
func (c *Cartridge) Size() int { return len(c.rom) }
