// Package access defines the bus access-kind enumeration shared by the bus
// and the pixel engine, split out to avoid an import cycle between
// internal/membus (which depends on internal/ppu for MMIO routing) and
// internal/ppu (which depends on this type for its Fast-mode reads).
package access

// Kind classifies a bus access for wait-state billing purposes.
type Kind uint8

const (
	// NonSequential is a full-cost access: the address does not follow
	// the previous access by one transfer width.
	NonSequential Kind = iota
	// Sequential follows the previous access by exactly one transfer
	// width and may use a cheaper timing table entry in some regions.
	Sequential
	// Fast bypasses timing entirely. Used by the pixel engine to inspect
	// memory while rendering without advancing the clock or re-entering
	// the CPU.
	Fast
)
