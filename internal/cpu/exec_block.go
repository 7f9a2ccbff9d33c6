package cpu

import "math/bits"

// execARMBlockTransfer implements LDM/STM. Registers are always
// transferred in ascending numeric order regardless of the P/U
// direction bits; an empty register list is the documented edge case
// that transfers r15 instead and still advances the base by 16 words.
func (c *CPU) execARMBlockTransfer(inst uint32) bool {
	p := inst&(1<<24) != 0
	u := inst&(1<<23) != 0
	s := inst&(1<<22) != 0
	w := inst&(1<<21) != 0
	l := inst&(1<<20) != 0
	rn := uint8((inst >> 16) & 0xF)
	list := uint16(inst & 0xFFFF)

	count := bits.OnesCount16(list)
	emptyList := count == 0

	base := c.Regs.Get(rn)
	size := uint32(count) * 4
	if emptyList {
		size = 16 * 4
	}

	var start uint32
	if u {
		start = base
	} else {
		start = base - size
	}

	// userBank transfers r0-r14 from/to the User-mode bank even when the
	// core is in a privileged mode: S=1 with no r15 in the list (or on a
	// store) selects this mode, per the architecture's "LDM/STM with ^"
	// rule.
	userBank := s && (!l || list&(1<<15) == 0)

	addr := start
	if p {
		addr += 4
	}
	advance := func() { addr += 4 }

	pcChanged := false
	var spsrRestoreCPSR uint32
	restoreCPSR := false

	transfer := func(reg uint8) {
		if l {
			v := c.bus.Read32(addr, Sequential)
			if reg == 15 {
				if s {
					restoreCPSR = true
					spsrRestoreCPSR = c.Regs.SPSR()
				}
				c.Regs.SetPC(v &^ 3)
				pcChanged = true
			} else if userBank {
				c.Regs.SetUser(reg, v)
			} else {
				c.Regs.Set(reg, v)
			}
		} else {
			var v uint32
			if userBank {
				v = c.Regs.GetUser(reg)
			} else {
				v = c.Regs.Get(reg)
			}
			if reg == 15 {
				v = c.visiblePC() + 4
			}
			c.bus.Write32(addr, v, Sequential)
		}
		advance()
	}

	if emptyList {
		transfer(15)
	} else {
		for reg := uint8(0); reg < 16; reg++ {
			if list&(1<<reg) != 0 {
				transfer(reg)
			}
		}
	}

	c.Cycle(1) // internal cycle for address calculation / register-bank switch

	finalBase := base
	if u {
		finalBase = base + size
	} else {
		finalBase = base - size
	}
	if w && !(l && list&(1<<rn) != 0) {
		c.Regs.Set(rn, finalBase)
	}

	if pcChanged {
		if restoreCPSR {
			c.Regs.SetCPSR(spsrRestoreCPSR)
		}
		thumb := c.Regs.IsThumb()
		target := c.Regs.PC()
		if !thumb {
			target &^= 3
		}
		c.flushTo(target, thumb)
	}
	return pcChanged
}
