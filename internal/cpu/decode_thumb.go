package cpu

// execThumb decodes and executes one 16-bit Thumb instruction. Returns
// true if it changed the program counter, in which case the pipeline
// has already been refilled through flushTo.
func (c *CPU) execThumb(inst uint16) bool {
	switch {
	case inst&0xF800 == 0x1800: // format 2: add/subtract
		return c.thumbAddSub(inst)
	case inst&0xE000 == 0x0000: // format 1: move shifted register
		return c.thumbShift(inst)
	case inst&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		return c.thumbImmediate(inst)
	case inst&0xFC00 == 0x4000: // format 4: ALU operations
		return c.thumbALU(inst)
	case inst&0xFC00 == 0x4400: // format 5: hi register ops / BX
		return c.thumbHiReg(inst)
	case inst&0xF800 == 0x4800: // format 6: PC-relative load
		return c.thumbPCRelLoad(inst)
	case inst&0xF200 == 0x5000: // format 7: load/store with register offset
		return c.thumbLoadStoreReg(inst)
	case inst&0xF200 == 0x5200: // format 8: load/store sign-extended byte/halfword
		return c.thumbLoadStoreSignExt(inst)
	case inst&0xE000 == 0x6000: // format 9: load/store with immediate offset
		return c.thumbLoadStoreImm(inst)
	case inst&0xF000 == 0x8000: // format 10: load/store halfword
		return c.thumbLoadStoreHalf(inst)
	case inst&0xF000 == 0x9000: // format 11: SP-relative load/store
		return c.thumbSPRelLoadStore(inst)
	case inst&0xF000 == 0xA000: // format 12: load address
		return c.thumbLoadAddress(inst)
	case inst&0xFF00 == 0xB000: // format 13: add offset to SP
		return c.thumbAddSP(inst)
	case inst&0xF600 == 0xB400: // format 14: push/pop
		return c.thumbPushPop(inst)
	case inst&0xF000 == 0xC000: // format 15: multiple load/store
		return c.thumbMultipleLoadStore(inst)
	case inst&0xFF00 == 0xDF00: // format 17: software interrupt
		c.enterException(ModeSupervisor, excSWI)
		return true
	case inst&0xF000 == 0xD000: // format 16: conditional branch
		return c.thumbCondBranch(inst)
	case inst&0xF800 == 0xE000: // format 18: unconditional branch
		return c.thumbBranch(inst)
	case inst&0xF000 == 0xF000: // format 19: long branch with link
		return c.thumbLongBranchLink(inst)
	default:
		c.enterException(ModeUndefined, excUndefined)
		return true
	}
}
