package cpu

// Registers is the ARM7TDMI register file: r0-r15, a current program
// status register, and the banked duplicates of r8-r14/SPSR for the five
// privileged modes. User and System modes share one bank.
type Registers struct {
	r [16]uint32 // r0-r15; r13/r14/r8-r12 here hold the User/System bank

	fiqR8_12 [5]uint32 // r8_fiq..r12_fiq
	fiqR13   uint32
	fiqR14   uint32

	bankR13 [5]uint32 // r13 for IRQ, SVC, ABT, UND (indexed by bankIndex); slot 0 (FIQ) is unused, FIQ's r13 is fiqR13
	bankR14 [5]uint32 // r14 for the same modes; slot 0 is unused, FIQ's r14 is fiqR14

	spsr [5]uint32 // SPSR for the same five modes; User/System has none

	cpsr uint32
}

// bankIndex maps a privileged mode to its slot in bankR13/bankR14/spsr.
func bankIndex(mode uint32) (int, bool) {
	switch mode {
	case ModeFIQ:
		return 0, true
	case ModeIRQ:
		return 1, true
	case ModeSupervisor:
		return 2, true
	case ModeAbort:
		return 3, true
	case ModeUndefined:
		return 4, true
	default:
		return 0, false
	}
}

// NewRegisters returns a register file with CPSR in System mode, ARM
// state, IRQ and FIQ unmasked; Reset (in cpu.go) applies the
// architectural boot defaults on top of this.
func NewRegisters() *Registers {
	return &Registers{cpsr: ModeSystem}
}

func (r *Registers) CPSR() uint32     { return r.cpsr }
func (r *Registers) SetCPSR(v uint32) { r.cpsr = v }

func (r *Registers) Mode() uint32 { return normalizeMode(r.cpsr & 0x1F) }

// SetMode changes only the mode bits of CPSR; banked registers are always
// resolved live from the mode field, so no register shuffling happens
// here.
func (r *Registers) SetMode(mode uint32) {
	r.cpsr = (r.cpsr &^ 0x1F) | (mode & 0x1F)
}

func (r *Registers) IsThumb() bool       { return r.cpsr&(1<<bitT) != 0 }
func (r *Registers) SetThumb(set bool)   { r.setBit(bitT, set) }
func (r *Registers) IRQDisabled() bool   { return r.cpsr&(1<<bitI) != 0 }
func (r *Registers) SetIRQDisabled(set bool) { r.setBit(bitI, set) }
func (r *Registers) FIQDisabled() bool   { return r.cpsr&(1<<bitF) != 0 }
func (r *Registers) SetFIQDisabled(set bool) { r.setBit(bitF, set) }

func (r *Registers) setBit(bit uint, set bool) {
	if set {
		r.cpsr |= 1 << bit
	} else {
		r.cpsr &^= 1 << bit
	}
}

func (r *Registers) FlagN() bool     { return r.cpsr&(1<<flagN) != 0 }
func (r *Registers) FlagZ() bool     { return r.cpsr&(1<<flagZ) != 0 }
func (r *Registers) FlagC() bool     { return r.cpsr&(1<<flagC) != 0 }
func (r *Registers) FlagV() bool     { return r.cpsr&(1<<flagV) != 0 }
func (r *Registers) SetFlagN(v bool) { r.setBit(flagN, v) }
func (r *Registers) SetFlagZ(v bool) { r.setBit(flagZ, v) }
func (r *Registers) SetFlagC(v bool) { r.setBit(flagC, v) }
func (r *Registers) SetFlagV(v bool) { r.setBit(flagV, v) }

// PC returns the raw r15 storage (the address the pipeline last advanced
// to), not the pipeline-visible value an executing instruction should see
// — that adjustment is the CPU's responsibility (see cpu.go's visiblePC).
func (r *Registers) PC() uint32     { return r.r[15] }
func (r *Registers) SetPC(v uint32) { r.r[15] = v }

// Get reads general-purpose register n (0-15), resolving FIQ and
// SVC/IRQ/ABT/UND banking per the current mode. User and System share a
// bank.
func (r *Registers) Get(n uint8) uint32 {
	if n == 15 {
		return r.r[15]
	}
	mode := r.Mode()
	if mode == ModeFIQ && n >= 8 && n <= 12 {
		return r.fiqR8_12[n-8]
	}
	if n == 13 || n == 14 {
		if mode == ModeFIQ {
			if n == 13 {
				return r.fiqR13
			}
			return r.fiqR14
		}
		if idx, ok := bankIndex(mode); ok {
			if n == 13 {
				return r.bankR13[idx]
			}
			return r.bankR14[idx]
		}
	}
	return r.r[n]
}

// Set writes general-purpose register n (0-15). Writing r15 only updates
// raw storage; the caller (cpu.go) is responsible for refilling the
// pipeline afterward.
func (r *Registers) Set(n uint8, v uint32) {
	if n == 15 {
		r.r[15] = v
		return
	}
	mode := r.Mode()
	if mode == ModeFIQ && n >= 8 && n <= 12 {
		r.fiqR8_12[n-8] = v
		return
	}
	if n == 13 || n == 14 {
		if mode == ModeFIQ {
			if n == 13 {
				r.fiqR13 = v
			} else {
				r.fiqR14 = v
			}
			return
		}
		if idx, ok := bankIndex(mode); ok {
			if n == 13 {
				r.bankR13[idx] = v
			} else {
				r.bankR14[idx] = v
			}
			return
		}
	}
	r.r[n] = v
}

// GetUser reads r8-r14 from the User/System bank regardless of current
// mode, used by LDM/STM's "^" (S-bit, no-PC-in-list) user-bank transfer.
func (r *Registers) GetUser(n uint8) uint32 {
	if n >= 8 && n <= 14 {
		return r.r[n]
	}
	return r.Get(n)
}

func (r *Registers) SetUser(n uint8, v uint32) {
	if n >= 8 && n <= 14 {
		r.r[n] = v
		return
	}
	r.Set(n, v)
}

// SPSR returns the saved PSR for the current mode, or 0 in User/System
// mode where no SPSR exists.
func (r *Registers) SPSR() uint32 {
	if idx, ok := bankIndex(r.Mode()); ok {
		return r.spsr[idx]
	}
	return 0
}

func (r *Registers) SetSPSR(v uint32) {
	if idx, ok := bankIndex(r.Mode()); ok {
		r.spsr[idx] = v
	}
}
