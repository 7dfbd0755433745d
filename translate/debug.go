package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nak3/dydra/ir"
)

// LiftHexWord parses a hex-encoded guest word (with or without a leading
// "0x") and lifts it at pc 0, for cmd/riscvjit's "lift" debug subcommand.
func LiftHexWord(hexWord string) (uint32, []ir.Op, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(hexWord, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("translate: parse hex word %q: %w", hexWord, err)
	}
	word := uint32(v)
	ops, _, err := decodeOne(word, 0)
	if err != nil {
		return word, nil, err
	}
	return word, ops, nil
}

// DecodeWord lifts one guest word at pc, exposing decodeOne to callers
// outside the package (cmd/riscvdump) that only need the IR, not a full
// translated block.
func DecodeWord(word uint32, pc uint64) (ops []ir.Op, terminal bool, err error) {
	return decodeOne(word, pc)
}

// RecognizedOpcodes lists the guest opcode mnemonics this decoder covers,
// for cmd/riscvjit's "disasm" subcommand.
func RecognizedOpcodes() []string {
	return []string{
		"LUI", "JAL", "JALR",
		"BEQ", "BNE", "BLT", "BGE", "BLTU", "BGEU",
		"LB", "LH", "LW", "LD", "LHU", "LWU",
		"SB", "SH", "SW", "SD",
		"ADDI", "XORI", "ORI", "ANDI",
		"ADD", "SUB", "AND", "OR", "XOR",
	}
}
