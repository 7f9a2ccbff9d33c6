package cpu

// execARMBranch implements B and BL. The 24-bit signed immediate is
// shifted left two bits and added to the pipeline-visible PC (PC+8).
func (c *CPU) execARMBranch(inst uint32) bool {
	link := inst&(1<<24) != 0
	offset := inst & 0x00FFFFFF
	if offset&0x00800000 != 0 {
		offset |= 0xFF000000
	}
	target := c.visiblePC() + (offset << 2)

	if link {
		// LR gets the address of the instruction following this BL,
		// i.e. the current instruction's address (visiblePC-8) plus 4.
		c.Regs.Set(14, c.visiblePC()-4)
	}
	c.flushTo(target&^3, false)
	return true
}

// execBX implements BX Rm: branch and exchange instruction set, the
// ARM/Thumb switch point. Bit 0 of Rm selects Thumb when set.
func (c *CPU) execBX(inst uint32) bool {
	rm := uint8(inst & 0xF)
	addr := c.Regs.Get(rm)
	thumb := addr&1 != 0
	if thumb {
		c.flushTo(addr&^1, true)
	} else {
		c.flushTo(addr&^3, false)
	}
	return true
}
