package cpu

// excKind names the exception vector and link-register offset to apply.
type excKind struct {
	vector    uint32
	lrOffset  uint32 // added to the PC-at-exception value to compute saved LR
	disableFQ bool   // whether entry also masks FIQ (reset and FIQ only)
}

var (
	excSWI       = excKind{vector: 0x08, lrOffset: 0}
	excUndefined = excKind{vector: 0x04, lrOffset: 0}
	excIRQ       = excKind{vector: 0x18, lrOffset: 4}
	excFIQ       = excKind{vector: 0x1C, lrOffset: 4, disableFQ: true}
)

// enterException performs the common ARM exception-entry sequence: save
// CPSR to the target mode's SPSR, switch mode, mask IRQ (and FIQ for
// reset/FIQ), switch to ARM state, save the return address in the
// banked LR, and vector to the handler. The saved return address is the
// address of the instruction that was about to execute (visiblePC adds
// the pipeline's lookahead, the instruction's own encoding already
// consumed), matching the fixed offsets the ARM7TDMI applies per
// exception type.
func (c *CPU) enterException(mode uint32, kind excKind) {
	savedCPSR := c.Regs.CPSR()
	retAddr := c.visiblePC() - 4 + kind.lrOffset
	c.debugf("cpu: exception mode=%02x vector=%08x lr=%08x\n", mode, kind.vector, retAddr)

	c.Regs.SetMode(mode)
	c.Regs.SetSPSR(savedCPSR)
	c.Regs.SetIRQDisabled(true)
	if kind.disableFQ {
		c.Regs.SetFIQDisabled(true)
	}
	c.Regs.Set(14, retAddr)
	c.flushTo(kind.vector, false)
}

// RequestIRQ delivers a hardware IRQ if the core's I bit permits it.
// Returns true if the exception was taken.
func (c *CPU) RequestIRQ() bool {
	if c.Regs.IRQDisabled() {
		return false
	}
	c.halted = false
	c.enterException(ModeIRQ, excIRQ)
	return true
}
