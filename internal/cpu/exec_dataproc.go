package cpu

import "goba/util/convert"

// dataProcOp is the 4-bit opcode field (bits 24-21) of a data processing
// instruction.
type dataProcOp uint8

const (
	opAND dataProcOp = iota
	opEOR
	opSUB
	opRSB
	opADD
	opADC
	opSBC
	opRSC
	opTST
	opTEQ
	opCMP
	opCMN
	opORR
	opMOV
	opBIC
	opMVN
)

// execDataProcessing implements the sixteen data-processing opcodes
// (AND..MVN), computing the second operand via the barrel shifter and
// applying condition-code updates when S=1.
func (c *CPU) execDataProcessing(inst uint32) bool {
	i := inst&(1<<25) != 0
	op := dataProcOp((inst >> 21) & 0xF)
	s := inst&(1<<20) != 0
	rn := uint8((inst >> 16) & 0xF)
	rd := uint8((inst >> 12) & 0xF)

	op2, shiftCarry := c.resolveOperand2(inst, i)
	carryIn := c.Regs.FlagC()
	rnVal := c.Regs.Get(rn)

	var result uint32
	var writesResult = true
	var carryOut, overflow bool
	carryOut = shiftCarry

	switch op {
	case opAND:
		result = rnVal & op2
	case opEOR:
		result = rnVal ^ op2
	case opSUB:
		result, carryOut, overflow = subWithFlags(rnVal, op2)
	case opRSB:
		result, carryOut, overflow = subWithFlags(op2, rnVal)
	case opADD:
		result, carryOut, overflow = addWithFlags(rnVal, op2)
	case opADC:
		result, carryOut, overflow = addWithCarryFlags(rnVal, op2, carryIn)
	case opSBC:
		result, carryOut, overflow = subWithCarryFlags(rnVal, op2, carryIn)
	case opRSC:
		result, carryOut, overflow = subWithCarryFlags(op2, rnVal, carryIn)
	case opTST:
		result = rnVal & op2
		writesResult = false
	case opTEQ:
		result = rnVal ^ op2
		writesResult = false
	case opCMP:
		result, carryOut, overflow = subWithFlags(rnVal, op2)
		writesResult = false
	case opCMN:
		result, carryOut, overflow = addWithFlags(rnVal, op2)
		writesResult = false
	case opORR:
		result = rnVal | op2
	case opMOV:
		result = op2
	case opBIC:
		result = rnVal &^ op2
	case opMVN:
		result = ^op2
	}

	if writesResult {
		c.Regs.Set(rd, result)
	}

	if s {
		if rd == 15 && writesResult {
			// Writing r15 with S=1 restores CPSR from the current mode's
			// SPSR instead of updating flags individually — the
			// architectural "return from exception" idiom.
			if spsr := c.Regs.SPSR(); spsr != 0 || c.Regs.Mode() != ModeUser {
				c.Regs.SetCPSR(spsr)
			}
		} else {
			c.Regs.SetFlagN(result&(1<<31) != 0)
			c.Regs.SetFlagZ(result == 0)
			switch op {
			case opAND, opEOR, opTST, opTEQ, opORR, opMOV, opBIC, opMVN:
				c.Regs.SetFlagC(carryOut) // carry from the shifter only
			default:
				c.Regs.SetFlagC(carryOut)
				c.Regs.SetFlagV(overflow)
			}
		}
	}

	if rd == 15 && writesResult {
		// An S=1 write to r15 may have just restored CPSR (and with it
		// the T bit) from SPSR; flushTo must honor whatever state is
		// now current.
		thumb := c.Regs.IsThumb()
		target := result
		if !thumb {
			target &^= 3
		} else {
			target &^= 1
		}
		c.flushTo(target, thumb)
		return true
	}
	return false
}

// resolveOperand2 computes the shifted second operand for a data
// processing instruction and the shifter's carry-out (the current C flag
// when no shift applies).
func (c *CPU) resolveOperand2(inst uint32, immediate bool) (uint32, bool) {
	carryIn := c.Regs.FlagC()
	if immediate {
		rotate := uint8((inst>>8)&0xF) * 2
		imm := inst & 0xFF
		if rotate == 0 {
			return imm, carryIn
		}
		v, carry := shiftRORFn(imm, rotate, true, carryIn)
		return v, carry
	}

	rm := uint8(inst & 0xF)
	st := shiftType((inst >> 5) & 0x3)
	byReg := inst&(1<<4) != 0

	if byReg {
		rs := uint8((inst >> 8) & 0xF)
		amount := uint8(c.Regs.Get(rs) & 0xFF)
		rmVal := c.regForShift(rm, rs)
		c.Cycle(1) // register-specified shift costs one internal cycle
		if amount == 0 {
			return rmVal, carryIn
		}
		if amount >= 32 && st == shiftLSL {
			if amount == 32 {
				return 0, rmVal&1 != 0
			}
			return 0, false
		}
		v, carry := barrelShift(st, rmVal, amount, false, carryIn)
		return v, carry
	}

	shiftAmt := uint8((inst >> 7) & 0x1F)
	rmVal := c.Regs.Get(rm)
	v, carry := barrelShift(st, rmVal, shiftAmt, true, carryIn)
	return v, carry
}

// regForShift reads Rm for a register-specified shift, applying the
// well-known quirk that Rm=15 reads as PC+12 (two instructions ahead of
// the normal PC+8 visible value) because the register-shift amount is
// fetched from Rs in a cycle where the pipeline has advanced one step
// further.
func (c *CPU) regForShift(rm uint8, _ uint8) uint32 {
	if rm == 15 {
		return c.visiblePC() + 4
	}
	return c.Regs.Get(rm)
}

func addWithFlags(a, b uint32) (result uint32, carry, overflow bool) {
	sum := uint64(a) + uint64(b)
	result = uint32(sum)
	carry = sum > 0xFFFFFFFF
	overflow = (a^result)&(b^result)&(1<<31) != 0
	return
}

func addWithCarryFlags(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	cin := uint64(convert.BoolToInt(carryIn))
	sum := uint64(a) + uint64(b) + cin
	result = uint32(sum)
	carry = sum > 0xFFFFFFFF
	overflow = (a^result)&(b^result)&(1<<31) != 0
	return
}

func subWithFlags(a, b uint32) (result uint32, carry, overflow bool) {
	result = a - b
	carry = a >= b // NOT borrow: ARM's C flag on SUB means "no borrow"
	overflow = (a^b)&(a^result)&(1<<31) != 0
	return
}

func subWithCarryFlags(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	borrow := uint64(convert.BoolToInt(!carryIn))
	diff := uint64(a) - uint64(b) - borrow
	result = uint32(diff)
	carry = uint64(a) >= uint64(b)+borrow
	overflow = (a^b)&(a^result)&(1<<31) != 0
	return
}
