package cpu

// condition is the 4-bit condition field in bits 31-28 of every ARM
// instruction (and of the BCC/B family in Thumb).
type condition uint8

const (
	condEQ condition = iota // Z set
	condNE                  // Z clear
	condCS                  // C set
	condCC                  // C clear
	condMI                  // N set
	condPL                  // N clear
	condVS                  // V set
	condVC                  // V clear
	condHI                  // C set and Z clear
	condLS                  // C clear or Z set
	condGE                  // N == V
	condLT                  // N != V
	condGT                  // Z clear and N == V
	condLE                  // Z set or N != V
	condAL                  // always
	condNV                  // never (reserved)
)

// evalCondition decides whether an instruction carrying cond should
// execute given the current flags. NV is treated as never taken: ARMv4T
// reserves this encoding and real hardware behavior on it is
// architecturally undefined, so skipping it is the safe, deterministic
// choice.
func (c *CPU) evalCondition(cond condition) bool {
	n, z, cf, v := c.Regs.FlagN(), c.Regs.FlagZ(), c.Regs.FlagC(), c.Regs.FlagV()
	switch cond {
	case condEQ:
		return z
	case condNE:
		return !z
	case condCS:
		return cf
	case condCC:
		return !cf
	case condMI:
		return n
	case condPL:
		return !n
	case condVS:
		return v
	case condVC:
		return !v
	case condHI:
		return cf && !z
	case condLS:
		return !cf || z
	case condGE:
		return n == v
	case condLT:
		return n != v
	case condGT:
		return !z && n == v
	case condLE:
		return z || n != v
	case condAL:
		return true
	default: // condNV
		return false
	}
}
