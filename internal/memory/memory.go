// Package memory holds the flat, non-MMIO blocks of the GBA memory map:
// boot ROM, external work RAM and internal work RAM. Palette RAM, VRAM and
// OAM live in internal/ppu since their access rules are pixel-engine-owned;
// cartridge ROM/SRAM live in internal/cartridge.
package memory

const (
	BIOSStart = 0x00000000
	BIOSSize  = 0x4000 // 16 KiB

	EWRAMStart = 0x02000000
	EWRAMSize  = 0x40000 // 256 KiB
	EWRAMMask  = EWRAMSize - 1

	IWRAMStart = 0x03000000
	IWRAMSize  = 0x8000 // 32 KiB
	IWRAMMask  = IWRAMSize - 1
)

// BIOS is the read-only 16 KiB boot ROM.
type BIOS struct {
	data [BIOSSize]byte
}

// NewBIOS returns a zeroed BIOS. Load fills it from a boot ROM image.
func NewBIOS() *BIOS { return &BIOS{} }

// Load copies a boot ROM image into the BIOS region, truncating or
// zero-padding to BIOSSize.
func (b *BIOS) Load(data []byte) {
	n := copy(b.data[:], data)
	for i := n; i < BIOSSize; i++ {
		b.data[i] = 0
	}
}

func (b *BIOS) Read8(offset uint32) uint8 { return b.data[offset&(BIOSSize-1)] }

// EWRAM is the 256 KiB external work RAM. Invariant: it is addressed with
// mask 0x3FFFF, not 0x3FFF — a narrower mask silently truncates the region
// to 16 KiB and is a known bug in naive ports of this memory map.
type EWRAM struct {
	data [EWRAMSize]byte
}

func NewEWRAM() *EWRAM { return &EWRAM{} }

func (e *EWRAM) Read8(offset uint32) uint8         { return e.data[offset&EWRAMMask] }
func (e *EWRAM) Write8(offset uint32, value uint8) { e.data[offset&EWRAMMask] = value }

// IWRAM is the 32 KiB internal work RAM.
type IWRAM struct {
	data [IWRAMSize]byte
}

func NewIWRAM() *IWRAM { return &IWRAM{} }

func (i *IWRAM) Read8(offset uint32) uint8         { return i.data[offset&IWRAMMask] }
func (i *IWRAM) Write8(offset uint32, value uint8) { i.data[offset&IWRAMMask] = value }
