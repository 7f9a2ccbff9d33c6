package cpu

// execARM decodes and executes one ARM-state instruction word. It
// returns true if the instruction changed the program counter (branch,
// BX, or a data-processing/LDR/LDM write into r15), signaling the
// caller that the pipeline has already been refilled through flushTo and
// must not be advanced by one word.
func (c *CPU) execARM(inst uint32) bool {
	cond := condition((inst >> 28) & 0xF)
	if !c.evalCondition(cond) {
		c.Cycle(1) // conditional-fail still costs the prefetch cycle
		return false
	}

	switch (inst >> 26) & 0x3 {
	case 0b00:
		return c.execARMGroup00(inst)
	case 0b01:
		return c.execARMSingleTransfer(inst)
	case 0b10:
		if inst&(1<<25) != 0 {
			return c.execARMBranch(inst)
		}
		return c.execARMBlockTransfer(inst)
	default: // 0b11
		return c.execARMGroup11(inst)
	}
}

// execARMGroup00 covers data processing, PSR transfer, multiply,
// multiply-long, single data swap, and halfword/signed transfer — all of
// which share bits 27-26 == 00 and are disambiguated by bits 24-4.
func (c *CPU) execARMGroup00(inst uint32) bool {
	isMRS := inst&0x0FBF0FFF == 0x010F0000
	isMSRReg := inst&0x0FB0FFF0 == 0x0120F000
	isMSRImm := inst&0x0FB0F000 == 0x0320F000

	switch {
	case inst&0x0FFFFFF0 == 0x012FFF10: // BX Rm
		return c.execBX(inst)
	case isMRS || isMSRReg || isMSRImm:
		return c.execPSRTransfer(inst)
	}

	bit4 := inst&(1<<4) != 0
	bit7 := inst&(1<<7) != 0

	if bit4 && bit7 && inst&(1<<25) == 0 {
		switch {
		case (inst>>22)&0x3F == 0x00: // 000000: MUL/MLA
			c.execMultiply(inst)
			return false
		case (inst>>23)&0x1F == 0x01: // 00001: multiply long
			c.execMultiplyLong(inst)
			return false
		case (inst>>23)&0x1F == 0b00010 && (inst>>20)&0x3 == 0b00 && (inst>>5)&0x3 == 0b00: // 00010B00 ... 1001: SWP/SWPB
			c.execSwap(inst)
			return false
		default: // halfword/signed data transfer
			return c.execARMHalfwordTransfer(inst)
		}
	}

	return c.execDataProcessing(inst)
}

// execARMGroup11 covers SWI (bits 27-24 == 1111) and the coprocessor
// space, which this core treats as an undefined instruction trap since
// the GBA has no coprocessor.
func (c *CPU) execARMGroup11(inst uint32) bool {
	if (inst>>24)&0xF == 0xF {
		c.enterException(ModeSupervisor, excSWI)
		return true
	}
	c.enterException(ModeUndefined, excUndefined)
	return true
}
