package cpu

// execMultiply implements MUL and MLA. Rd and Rn are swapped relative to
// the usual data-processing layout: bits 19-16 hold the destination,
// bits 15-12 hold the accumulate operand.
func (c *CPU) execMultiply(inst uint32) {
	a := inst&(1<<21) != 0
	s := inst&(1<<20) != 0
	rd := uint8((inst >> 16) & 0xF)
	rn := uint8((inst >> 12) & 0xF)
	rs := uint8((inst >> 8) & 0xF)
	rm := uint8(inst & 0xF)

	result := c.Regs.Get(rm) * c.Regs.Get(rs)
	if a {
		result += c.Regs.Get(rn)
	}
	c.Regs.Set(rd, result)

	if s {
		c.Regs.SetFlagN(result&(1<<31) != 0)
		c.Regs.SetFlagZ(result == 0)
	}

	c.Cycle(mulCycles(c.Regs.Get(rs)))
	if a {
		c.Cycle(1)
	}
}

// execMultiplyLong implements UMULL/UMLAL/SMULL/SMLAL, producing a
// 64-bit result split across RdLo/RdHi.
func (c *CPU) execMultiplyLong(inst uint32) {
	signed := inst&(1<<22) != 0
	accumulate := inst&(1<<21) != 0
	s := inst&(1<<20) != 0
	rdHi := uint8((inst >> 16) & 0xF)
	rdLo := uint8((inst >> 12) & 0xF)
	rs := uint8((inst >> 8) & 0xF)
	rm := uint8(inst & 0xF)

	var result uint64
	if signed {
		result = uint64(int64(int32(c.Regs.Get(rm))) * int64(int32(c.Regs.Get(rs))))
	} else {
		result = uint64(c.Regs.Get(rm)) * uint64(c.Regs.Get(rs))
	}
	if accumulate {
		acc := uint64(c.Regs.Get(rdHi))<<32 | uint64(c.Regs.Get(rdLo))
		result += acc
	}

	c.Regs.Set(rdLo, uint32(result))
	c.Regs.Set(rdHi, uint32(result>>32))

	if s {
		c.Regs.SetFlagN(result&(1<<63) != 0)
		c.Regs.SetFlagZ(result == 0)
	}

	c.Cycle(mulCycles(c.Regs.Get(rs)) + 1)
	if accumulate {
		c.Cycle(1)
	}
}

// mulCycles approximates the ARM7TDMI's early-termination multiply
// timing: the internal cycle count depends on how many of Rs's top bits
// are all-zero or all-one (sign-extended), cut short as soon as a byte
// boundary makes no further difference to the partial product.
func mulCycles(rs uint32) int {
	if rs&0xFFFFFF00 == 0 || rs&0xFFFFFF00 == 0xFFFFFF00 {
		return 1
	}
	if rs&0xFFFF0000 == 0 || rs&0xFFFF0000 == 0xFFFF0000 {
		return 2
	}
	if rs&0xFF000000 == 0 || rs&0xFF000000 == 0xFF000000 {
		return 3
	}
	return 4
}

// execSwap implements SWP/SWPB: an atomic (from the CPU's perspective —
// the GBA has no other bus master) load-then-store at Rn's address.
func (c *CPU) execSwap(inst uint32) {
	b := inst&(1<<22) != 0
	rn := uint8((inst >> 16) & 0xF)
	rd := uint8((inst >> 12) & 0xF)
	rm := uint8(inst & 0xF)

	addr := c.Regs.Get(rn)
	if b {
		old := c.bus.Read8(addr, NonSequential)
		c.bus.Write8(addr, uint8(c.Regs.Get(rm)), NonSequential)
		c.Regs.Set(rd, uint32(old))
	} else {
		old := c.bus.Read32(addr, NonSequential)
		c.bus.Write32(addr, c.Regs.Get(rm), NonSequential)
		c.Regs.Set(rd, old)
	}
	c.Cycle(1)
}
