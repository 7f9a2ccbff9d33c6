package cpu

// execARMSingleTransfer implements LDR/STR (word and byte), both
// immediate and register-shifted-offset forms, with every pre/post
// index and writeback combination.
func (c *CPU) execARMSingleTransfer(inst uint32) bool {
	i := inst&(1<<25) != 0 // offset is a shifted register, not an immediate
	p := inst&(1<<24) != 0 // pre-indexed
	u := inst&(1<<23) != 0 // offset added, not subtracted
	b := inst&(1<<22) != 0 // byte transfer
	w := inst&(1<<21) != 0 // writeback (or, with P=0, always implied)
	l := inst&(1<<20) != 0 // load, not store
	rn := uint8((inst >> 16) & 0xF)
	rd := uint8((inst >> 12) & 0xF)

	var offset uint32
	if i {
		rm := uint8(inst & 0xF)
		st := shiftType((inst >> 5) & 0x3)
		amount := uint8((inst >> 7) & 0x1F)
		offset, _ = barrelShift(st, c.Regs.Get(rm), amount, true, c.Regs.FlagC())
	} else {
		offset = inst & 0xFFF
	}

	base := c.Regs.Get(rn)
	addr := base
	if p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	pcChanged := false
	if l {
		var value uint32
		if b {
			value = uint32(c.bus.Read8(addr, NonSequential))
		} else {
			value = c.bus.Read32(addr, NonSequential)
		}
		c.Cycle(1) // internal cycle to move the loaded value into the register
		if rd == 15 {
			c.flushTo(value&^3, false)
			pcChanged = true
		} else {
			c.Regs.Set(rd, value)
		}
	} else {
		value := c.Regs.Get(rd)
		if rd == 15 {
			value = c.visiblePC() + 4 // STR of PC stores PC+12
		}
		if b {
			c.bus.Write8(addr, uint8(value), NonSequential)
		} else {
			c.bus.Write32(addr, value, NonSequential)
		}
	}

	// A load into Rn itself must keep the loaded value: the base-register
	// writeback below is skipped rather than overwriting it, mirroring the
	// same rule execARMBlockTransfer applies to LDM/STM.
	skipWriteback := l && rd == rn
	if !p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
		if !skipWriteback {
			c.Regs.Set(rn, addr)
		}
	} else if w && !skipWriteback {
		c.Regs.Set(rn, addr)
	}

	return pcChanged
}

// execARMHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH, the
// halfword and signed-byte/halfword transfer family distinguished by
// bits 6-5 (SH field) of the shared encoding.
func (c *CPU) execARMHalfwordTransfer(inst uint32) bool {
	p := inst&(1<<24) != 0
	u := inst&(1<<23) != 0
	immForm := inst&(1<<22) != 0
	w := inst&(1<<21) != 0
	l := inst&(1<<20) != 0
	rn := uint8((inst >> 16) & 0xF)
	rd := uint8((inst >> 12) & 0xF)
	sh := (inst >> 5) & 0x3 // 01=unsigned halfword, 10=signed byte, 11=signed halfword

	var offset uint32
	if immForm {
		offset = ((inst >> 8) & 0xF << 4) | (inst & 0xF)
	} else {
		rm := uint8(inst & 0xF)
		offset = c.Regs.Get(rm)
	}

	base := c.Regs.Get(rn)
	addr := base
	if p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	pcChanged := false
	if l {
		var value uint32
		switch sh {
		case 0b01:
			value = uint32(c.bus.Read16(addr, NonSequential))
		case 0b10:
			value = uint32(int32(int8(c.bus.Read8(addr, NonSequential))))
		case 0b11:
			// ARMv4T quirk: a misaligned LDRSH reads the single byte at
			// the (odd) address and sign-extends it as a byte, rather
			// than reading a rotated halfword the way LDR does.
			if addr&1 != 0 {
				value = uint32(int32(int8(c.bus.Read8(addr, NonSequential))))
			} else {
				value = uint32(int32(int16(c.bus.Read16(addr, NonSequential))))
			}
		}
		c.Cycle(1)
		if rd == 15 {
			c.flushTo(value&^3, false)
			pcChanged = true
		} else {
			c.Regs.Set(rd, value)
		}
	} else {
		value := c.Regs.Get(rd)
		if rd == 15 {
			value = c.visiblePC() + 4
		}
		c.bus.Write16(addr, uint16(value), NonSequential)
	}

	skipWriteback := l && rd == rn
	if !p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
		if !skipWriteback {
			c.Regs.Set(rn, addr)
		}
	} else if w && !skipWriteback {
		c.Regs.Set(rn, addr)
	}

	return pcChanged
}
