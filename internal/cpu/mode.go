package cpu

// CPU operating modes, the low 5 bits of CPSR.
const (
	ModeUser       = 0x10
	ModeFIQ        = 0x11
	ModeIRQ        = 0x12
	ModeSupervisor = 0x13
	ModeAbort      = 0x17
	ModeUndefined  = 0x1B
	ModeSystem     = 0x1F
)

// CPSR bit positions.
const (
	flagV = 28
	flagC = 29
	flagZ = 30
	flagN = 31

	bitT = 5 // Thumb state
	bitF = 6 // FIQ disable
	bitI = 7 // IRQ disable
)

func validMode(m uint32) bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	default:
		return false
	}
}

// normalizeMode treats any mode encoding not in the architectural set as
// User mode, since CPSR's mode field can be loaded with a reserved
// pattern via MSR or a corrupted stack frame.
func normalizeMode(m uint32) uint32 {
	if validMode(m) {
		return m
	}
	return ModeUser
}
