package cpu

import "fmt"

var dpMnemonics = [16]string{
	"and", "eor", "sub", "rsb", "add", "adc", "sbc", "rsc",
	"tst", "teq", "cmp", "cmn", "orr", "mov", "bic", "mvn",
}

var condMnemonics = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "", "nv",
}

// DisasmARM produces a short, approximate mnemonic for an ARM
// instruction word, intended for the monitor and scripting console
// rather than bit-exact round-tripping.
func DisasmARM(inst uint32) string {
	cond := condMnemonics[(inst>>28)&0xF]
	if inst&0x0FFFFFF0 == 0x012FFF10 {
		return fmt.Sprintf("bx%s r%d", cond, inst&0xF)
	}
	switch (inst >> 26) & 0x3 {
	case 0b00:
		if inst&0x0FC000F0 == 0x00000090 {
			return fmt.Sprintf("mul%s r%d, r%d, r%d", cond, (inst>>16)&0xF, inst&0xF, (inst>>8)&0xF)
		}
		op := dpMnemonics[(inst>>21)&0xF]
		s := ""
		if inst&(1<<20) != 0 {
			s = "s"
		}
		rd := (inst >> 12) & 0xF
		rn := (inst >> 16) & 0xF
		return fmt.Sprintf("%s%s%s r%d, r%d, #...", op, cond, s, rd, rn)
	case 0b01:
		l := "str"
		if inst&(1<<20) != 0 {
			l = "ldr"
		}
		rd := (inst >> 12) & 0xF
		rn := (inst >> 16) & 0xF
		return fmt.Sprintf("%s%s r%d, [r%d, #...]", l, cond, rd, rn)
	case 0b10:
		if inst&(1<<25) != 0 {
			link := "b"
			if inst&(1<<24) != 0 {
				link = "bl"
			}
			return fmt.Sprintf("%s%s #...", link, cond)
		}
		return fmt.Sprintf("stm/ldm%s r%d, {...}", cond, (inst>>16)&0xF)
	default:
		if (inst>>24)&0xF == 0xF {
			return fmt.Sprintf("swi%s #%06x", cond, inst&0x00FFFFFF)
		}
		return fmt.Sprintf("undef %08x", inst)
	}
}

// DisasmThumb produces a short, approximate mnemonic for a Thumb
// instruction halfword.
func DisasmThumb(inst uint16) string {
	switch {
	case inst&0xF800 == 0xE000:
		return "b #..."
	case inst&0xF000 == 0xF000:
		if inst&(1<<11) != 0 {
			return "bl (low)"
		}
		return "bl (high)"
	case inst&0xFF00 == 0xDF00:
		return fmt.Sprintf("swi #%02x", inst&0xFF)
	case inst&0xF000 == 0xD000:
		return fmt.Sprintf("b%s #...", condMnemonics[(inst>>8)&0xF])
	case inst&0xFC00 == 0x4400:
		return "hireg op"
	default:
		return fmt.Sprintf("thumb %04x", inst)
	}
}
