package cpu

import "math/bits"

// thumbShift implements format 1: LSL/LSR/ASR Rd, Rs, #imm5.
func (c *CPU) thumbShift(inst uint16) bool {
	op := (inst >> 11) & 0x3
	amount := uint8((inst >> 6) & 0x1F)
	rs := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	var st shiftType
	switch op {
	case 0:
		st = shiftLSL
	case 1:
		st = shiftLSR
	case 2:
		st = shiftASR
	}
	v, carry := barrelShift(st, c.Regs.Get(rs), amount, true, c.Regs.FlagC())
	c.Regs.Set(rd, v)
	c.Regs.SetFlagN(v&(1<<31) != 0)
	c.Regs.SetFlagZ(v == 0)
	c.Regs.SetFlagC(carry)
	return false
}

// thumbAddSub implements format 2: ADD/SUB Rd, Rs, Rn/#imm3.
func (c *CPU) thumbAddSub(inst uint16) bool {
	immediate := inst&(1<<10) != 0
	sub := inst&(1<<9) != 0
	rnOrImm := uint8((inst >> 6) & 0x7)
	rs := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	var operand uint32
	if immediate {
		operand = uint32(rnOrImm)
	} else {
		operand = c.Regs.Get(rnOrImm)
	}

	rsVal := c.Regs.Get(rs)
	var result uint32
	var carry, overflow bool
	if sub {
		result, carry, overflow = subWithFlags(rsVal, operand)
	} else {
		result, carry, overflow = addWithFlags(rsVal, operand)
	}
	c.Regs.Set(rd, result)
	c.Regs.SetFlagN(result&(1<<31) != 0)
	c.Regs.SetFlagZ(result == 0)
	c.Regs.SetFlagC(carry)
	c.Regs.SetFlagV(overflow)
	return false
}

// thumbImmediate implements format 3: MOV/CMP/ADD/SUB Rd, #imm8.
func (c *CPU) thumbImmediate(inst uint16) bool {
	op := (inst >> 11) & 0x3
	rd := uint8((inst >> 8) & 0x7)
	imm := uint32(inst & 0xFF)

	cur := c.Regs.Get(rd)
	switch op {
	case 0: // MOV
		c.Regs.Set(rd, imm)
		c.Regs.SetFlagN(false)
		c.Regs.SetFlagZ(imm == 0)
	case 1: // CMP
		result, carry, overflow := subWithFlags(cur, imm)
		c.Regs.SetFlagN(result&(1<<31) != 0)
		c.Regs.SetFlagZ(result == 0)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 2: // ADD
		result, carry, overflow := addWithFlags(cur, imm)
		c.Regs.Set(rd, result)
		c.Regs.SetFlagN(result&(1<<31) != 0)
		c.Regs.SetFlagZ(result == 0)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 3: // SUB
		result, carry, overflow := subWithFlags(cur, imm)
		c.Regs.Set(rd, result)
		c.Regs.SetFlagN(result&(1<<31) != 0)
		c.Regs.SetFlagZ(result == 0)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	}
	return false
}

// thumbALU implements format 4: the 16 two-operand ALU ops on low
// registers (AND, EOR, LSL, LSR, ASR, ADC, SBC, ROR, TST, NEG, CMP, CMN,
// ORR, MUL, BIC, MVN).
func (c *CPU) thumbALU(inst uint16) bool {
	op := (inst >> 6) & 0xF
	rs := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)
	rdVal := c.Regs.Get(rd)
	rsVal := c.Regs.Get(rs)
	carryIn := c.Regs.FlagC()

	var result uint32
	writesResult := true
	carry, overflow := carryIn, c.Regs.FlagV()

	switch op {
	case 0x0: // AND
		result = rdVal & rsVal
	case 0x1: // EOR
		result = rdVal ^ rsVal
	case 0x2: // LSL
		result, carry = barrelShift(shiftLSL, rdVal, uint8(rsVal&0xFF), false, carryIn)
		c.Cycle(1)
	case 0x3: // LSR
		result, carry = barrelShift(shiftLSR, rdVal, uint8(rsVal&0xFF), false, carryIn)
		c.Cycle(1)
	case 0x4: // ASR
		result, carry = barrelShift(shiftASR, rdVal, uint8(rsVal&0xFF), false, carryIn)
		c.Cycle(1)
	case 0x5: // ADC
		result, carry, overflow = addWithCarryFlags(rdVal, rsVal, carryIn)
	case 0x6: // SBC
		result, carry, overflow = subWithCarryFlags(rdVal, rsVal, carryIn)
	case 0x7: // ROR
		result, carry = barrelShift(shiftROR, rdVal, uint8(rsVal&0xFF), false, carryIn)
		c.Cycle(1)
	case 0x8: // TST
		result = rdVal & rsVal
		writesResult = false
	case 0x9: // NEG
		result, carry, overflow = subWithFlags(0, rsVal)
	case 0xA: // CMP
		result, carry, overflow = subWithFlags(rdVal, rsVal)
		writesResult = false
	case 0xB: // CMN
		result, carry, overflow = addWithFlags(rdVal, rsVal)
		writesResult = false
	case 0xC: // ORR
		result = rdVal | rsVal
	case 0xD: // MUL
		result = rdVal * rsVal
		c.Cycle(mulCycles(rsVal))
	case 0xE: // BIC
		result = rdVal &^ rsVal
	case 0xF: // MVN
		result = ^rsVal
	}

	if writesResult {
		c.Regs.Set(rd, result)
	}
	c.Regs.SetFlagN(result&(1<<31) != 0)
	c.Regs.SetFlagZ(result == 0)
	switch op {
	case 0x2, 0x3, 0x4, 0x7: // shifts: carry from shifter, no V update
		c.Regs.SetFlagC(carry)
	case 0x0, 0x1, 0x8, 0xC, 0xE, 0xF, 0xD: // logical ops: C/V unaffected
	default:
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	}
	return false
}

// thumbHiReg implements format 5: ADD/CMP/MOV on any register (including
// r8-r15 via the H1/H2 bits) and BX.
func (c *CPU) thumbHiReg(inst uint16) bool {
	op := (inst >> 8) & 0x3
	h1 := inst&(1<<7) != 0
	h2 := inst&(1<<6) != 0
	rs := uint8((inst>>3)&0x7) + hiBit(h2)
	rd := uint8(inst&0x7) + hiBit(h1)

	if op == 0x3 { // BX/BLX Rs
		addr := c.Regs.Get(rs)
		thumb := addr&1 != 0
		if thumb {
			c.flushTo(addr&^1, true)
		} else {
			c.flushTo(addr&^3, false)
		}
		return true
	}

	rsVal := c.Regs.Get(rs)
	if rs == 15 {
		rsVal = c.visiblePC()
	}
	rdVal := c.Regs.Get(rd)
	if rd == 15 {
		rdVal = c.visiblePC()
	}

	switch op {
	case 0x0: // ADD
		result := rdVal + rsVal
		if rd == 15 {
			c.flushTo(result&^1, true)
			return true
		}
		c.Regs.Set(rd, result)
	case 0x1: // CMP
		result, carry, overflow := subWithFlags(rdVal, rsVal)
		c.Regs.SetFlagN(result&(1<<31) != 0)
		c.Regs.SetFlagZ(result == 0)
		c.Regs.SetFlagC(carry)
		c.Regs.SetFlagV(overflow)
	case 0x2: // MOV
		if rd == 15 {
			c.flushTo(rsVal&^1, true)
			return true
		}
		c.Regs.Set(rd, rsVal)
	}
	return false
}

func hiBit(set bool) uint8 {
	if set {
		return 8
	}
	return 0
}

// thumbPCRelLoad implements format 6: LDR Rd, [PC, #imm8*4]. PC is
// word-aligned before the offset is applied, per the architecture's
// rule for this addressing mode.
func (c *CPU) thumbPCRelLoad(inst uint16) bool {
	rd := uint8((inst >> 8) & 0x7)
	imm := uint32(inst&0xFF) * 4
	base := (c.visiblePC()) &^ 3
	v := c.bus.Read32(base+imm, NonSequential)
	c.Cycle(1)
	c.Regs.Set(rd, v)
	return false
}

// thumbLoadStoreReg implements format 7: LDR/STR/LDRB/STRB with a
// register offset.
func (c *CPU) thumbLoadStoreReg(inst uint16) bool {
	l := inst&(1<<11) != 0
	b := inst&(1<<10) != 0
	ro := uint8((inst >> 6) & 0x7)
	rb := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	addr := c.Regs.Get(rb) + c.Regs.Get(ro)
	if l {
		var v uint32
		if b {
			v = uint32(c.bus.Read8(addr, NonSequential))
		} else {
			v = c.bus.Read32(addr, NonSequential)
		}
		c.Cycle(1)
		c.Regs.Set(rd, v)
	} else {
		if b {
			c.bus.Write8(addr, uint8(c.Regs.Get(rd)), NonSequential)
		} else {
			c.bus.Write32(addr, c.Regs.Get(rd), NonSequential)
		}
	}
	return false
}

// thumbLoadStoreSignExt implements format 8: LDRH/STRH/LDSB/LDSH with a
// register offset.
func (c *CPU) thumbLoadStoreSignExt(inst uint16) bool {
	hFlag := inst&(1<<11) != 0
	sFlag := inst&(1<<10) != 0
	ro := uint8((inst >> 6) & 0x7)
	rb := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	addr := c.Regs.Get(rb) + c.Regs.Get(ro)
	switch {
	case !sFlag && !hFlag: // STRH
		c.bus.Write16(addr, uint16(c.Regs.Get(rd)), NonSequential)
	case !sFlag && hFlag: // LDRH
		v := uint32(c.bus.Read16(addr, NonSequential))
		c.Cycle(1)
		c.Regs.Set(rd, v)
	case sFlag && !hFlag: // LDSB
		v := uint32(int32(int8(c.bus.Read8(addr, NonSequential))))
		c.Cycle(1)
		c.Regs.Set(rd, v)
	default: // LDSH
		var v uint32
		if addr&1 != 0 {
			v = uint32(int32(int8(c.bus.Read8(addr, NonSequential))))
		} else {
			v = uint32(int32(int16(c.bus.Read16(addr, NonSequential))))
		}
		c.Cycle(1)
		c.Regs.Set(rd, v)
	}
	return false
}

// thumbLoadStoreImm implements format 9: LDR/STR/LDRB/STRB with a
// 5-bit immediate offset (scaled by the transfer width).
func (c *CPU) thumbLoadStoreImm(inst uint16) bool {
	b := inst&(1<<12) != 0
	l := inst&(1<<11) != 0
	imm := uint32((inst >> 6) & 0x1F)
	rb := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	if !b {
		imm *= 4
	}
	addr := c.Regs.Get(rb) + imm
	if l {
		var v uint32
		if b {
			v = uint32(c.bus.Read8(addr, NonSequential))
		} else {
			v = c.bus.Read32(addr, NonSequential)
		}
		c.Cycle(1)
		c.Regs.Set(rd, v)
	} else {
		if b {
			c.bus.Write8(addr, uint8(c.Regs.Get(rd)), NonSequential)
		} else {
			c.bus.Write32(addr, c.Regs.Get(rd), NonSequential)
		}
	}
	return false
}

// thumbLoadStoreHalf implements format 10: LDRH/STRH with a 5-bit
// immediate offset scaled by two.
func (c *CPU) thumbLoadStoreHalf(inst uint16) bool {
	l := inst&(1<<11) != 0
	imm := uint32((inst>>6)&0x1F) * 2
	rb := uint8((inst >> 3) & 0x7)
	rd := uint8(inst & 0x7)

	addr := c.Regs.Get(rb) + imm
	if l {
		v := uint32(c.bus.Read16(addr, NonSequential))
		c.Cycle(1)
		c.Regs.Set(rd, v)
	} else {
		c.bus.Write16(addr, uint16(c.Regs.Get(rd)), NonSequential)
	}
	return false
}

// thumbSPRelLoadStore implements format 11: LDR/STR Rd, [SP, #imm8*4].
func (c *CPU) thumbSPRelLoadStore(inst uint16) bool {
	l := inst&(1<<11) != 0
	rd := uint8((inst >> 8) & 0x7)
	imm := uint32(inst&0xFF) * 4

	addr := c.Regs.Get(13) + imm
	if l {
		v := c.bus.Read32(addr, NonSequential)
		c.Cycle(1)
		c.Regs.Set(rd, v)
	} else {
		c.bus.Write32(addr, c.Regs.Get(rd), NonSequential)
	}
	return false
}

// thumbLoadAddress implements format 12: ADD Rd, PC/SP, #imm8*4.
func (c *CPU) thumbLoadAddress(inst uint16) bool {
	sp := inst&(1<<11) != 0
	rd := uint8((inst >> 8) & 0x7)
	imm := uint32(inst&0xFF) * 4

	var base uint32
	if sp {
		base = c.Regs.Get(13)
	} else {
		base = c.visiblePC() &^ 3
	}
	c.Regs.Set(rd, base+imm)
	return false
}

// thumbAddSP implements format 13: ADD/SUB SP, #imm7*4.
func (c *CPU) thumbAddSP(inst uint16) bool {
	neg := inst&(1<<7) != 0
	imm := uint32(inst&0x7F) * 4
	sp := c.Regs.Get(13)
	if neg {
		c.Regs.Set(13, sp-imm)
	} else {
		c.Regs.Set(13, sp+imm)
	}
	return false
}

// thumbPushPop implements format 14: PUSH/POP {Rlist}, with the
// optional LR (on push) / PC (on pop) extra register.
func (c *CPU) thumbPushPop(inst uint16) bool {
	l := inst&(1<<11) != 0
	r := inst&(1<<8) != 0
	list := uint8(inst & 0xFF)

	sp := c.Regs.Get(13)
	pcChanged := false

	if l { // POP
		addr := sp
		for reg := uint8(0); reg < 8; reg++ {
			if list&(1<<reg) != 0 {
				c.Regs.Set(reg, c.bus.Read32(addr, Sequential))
				addr += 4
			}
		}
		if r {
			v := c.bus.Read32(addr, Sequential)
			addr += 4
			c.flushTo(v&^1, true)
			pcChanged = true
		}
		c.Regs.Set(13, addr)
		c.Cycle(1)
	} else { // PUSH
		count := bits.OnesCount8(list)
		if r {
			count++
		}
		addr := sp - uint32(count)*4
		c.Regs.Set(13, addr)
		cur := addr
		for reg := uint8(0); reg < 8; reg++ {
			if list&(1<<reg) != 0 {
				c.bus.Write32(cur, c.Regs.Get(reg), Sequential)
				cur += 4
			}
		}
		if r {
			c.bus.Write32(cur, c.Regs.Get(14), Sequential)
		}
	}
	return pcChanged
}

// thumbMultipleLoadStore implements format 15: LDMIA/STMIA Rb!, {Rlist}.
func (c *CPU) thumbMultipleLoadStore(inst uint16) bool {
	l := inst&(1<<11) != 0
	rb := uint8((inst >> 8) & 0x7)
	list := uint8(inst & 0xFF)

	addr := c.Regs.Get(rb)
	if list == 0 {
		// Documented edge case: an empty list still transfers r15 and
		// advances the base by 0x40 in Thumb state.
		if l {
			c.flushTo(c.bus.Read32(addr, Sequential)&^1, true)
		} else {
			c.bus.Write32(addr, c.visiblePC()+4, Sequential)
		}
		c.Regs.Set(rb, addr+0x40)
		return l
	}

	for reg := uint8(0); reg < 8; reg++ {
		if list&(1<<reg) != 0 {
			if l {
				c.Regs.Set(reg, c.bus.Read32(addr, Sequential))
			} else {
				c.bus.Write32(addr, c.Regs.Get(reg), Sequential)
			}
			addr += 4
		}
	}
	if !l || list&(1<<rb) == 0 {
		c.Regs.Set(rb, addr)
	}
	c.Cycle(1)
	return false
}

// thumbCondBranch implements format 16: Bcc, an 8-bit signed offset
// scaled by two, relative to PC+4.
func (c *CPU) thumbCondBranch(inst uint16) bool {
	cond := condition((inst >> 8) & 0xF)
	if !c.evalCondition(cond) {
		c.Cycle(1)
		return false
	}
	offset := int32(int8(inst & 0xFF))
	target := uint32(int32(c.visiblePC()) + offset*2)
	c.flushTo(target&^1, true)
	return true
}

// thumbBranch implements format 18: unconditional B, an 11-bit signed
// offset scaled by two.
func (c *CPU) thumbBranch(inst uint16) bool {
	offset := uint32(inst & 0x7FF)
	signed := int32(offset<<21) >> 21 // sign-extend from 11 bits
	target := uint32(int32(c.visiblePC()) + signed*2)
	c.flushTo(target&^1, true)
	return true
}

// thumbLongBranchLink implements format 19: BL, a two-instruction
// sequence where the first half (H=0) stashes PC+(offset<<12) into LR
// and the second half (H=1) computes the final target from LR+offset*2
// and sets LR to the return address.
func (c *CPU) thumbLongBranchLink(inst uint16) bool {
	high := inst&(1<<11) != 0
	offset := uint32(inst & 0x7FF)

	if !high {
		signed := int32(offset<<21) >> 21 // sign-extend from 11 bits
		c.Regs.Set(14, uint32(int32(c.visiblePC())+signed<<12))
		return false
	}

	target := c.Regs.Get(14) + offset<<1
	ret := c.visiblePC() - 2 + 1 // return address, with bit0 set (Thumb)
	c.Regs.Set(14, ret)
	c.flushTo(target&^1, true)
	return true
}
