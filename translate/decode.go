package translate

import (
	"fmt"

	"github.com/nak3/dydra/ir"
	"github.com/nak3/dydra/riscv"
)

// LiftError reports a fatal decode/lift-time failure — an unrecognized
// guest opcode or funct3/funct7 combination — mirroring x64.EmitError's
// shape so both halves of translation (lift, emit) report failures the
// same way. Spec §4.5 / SPEC_FULL.md §2.2.
type LiftError struct {
	Opcode uint32
	PC     uint64
	Msg    string
}

func (e *LiftError) Error() string {
	return fmt.Sprintf("translate: lift opcode %#x at pc %#x: %s", e.Opcode, e.PC, e.Msg)
}

// decodeOne lifts the single guest word at pc into its IR sequence, and
// reports whether it is a control-transfer instruction — the point at
// which TranslateBlock must stop, per spec §2's "one block per control-
// transfer instruction."
func decodeOne(word uint32, pc uint64) (ops []ir.Op, terminal bool, err error) {
	opcode := word & 0x7f
	funct3 := (word >> 12) & 0x7
	funct7 := (word >> 25) & 0x7f

	switch opcode {
	case 0x37: // LUI
		return riscv.LiftLUI(word), false, nil

	case 0x6f: // JAL
		return riscv.LiftJAL(word, pc), true, nil

	case 0x67: // JALR
		if funct3 != 0 {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported JALR funct3 %#x", funct3)}
		}
		return riscv.LiftJALR(word), true, nil

	case 0x63: // BRANCH
		op, ok := branchOpcode(funct3)
		if !ok {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported branch funct3 %#x", funct3)}
		}
		return riscv.LiftBranch(op, word, pc), true, nil

	case 0x03: // LOAD
		op, ok := loadOpcode(funct3)
		if !ok {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported load funct3 %#x", funct3)}
		}
		return riscv.LiftLoad(op, word), false, nil

	case 0x23: // STORE
		op, ok := storeOpcode(funct3)
		if !ok {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported store funct3 %#x", funct3)}
		}
		return riscv.LiftStore(op, word), false, nil

	case 0x13: // OP-IMM
		op, ok := opImmOpcode(funct3)
		if !ok {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported op-imm funct3 %#x", funct3)}
		}
		return riscv.LiftIType(op, word), false, nil

	case 0x33: // OP
		op, ok := opOpcode(funct3, funct7)
		if !ok {
			return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: fmt.Sprintf("unsupported op funct3/7 %#x/%#x", funct3, funct7)}
		}
		return riscv.LiftRType(op, word), false, nil

	default:
		return nil, false, &LiftError{Opcode: opcode, PC: pc, Msg: "unrecognized opcode"}
	}
}

func branchOpcode(funct3 uint32) (ir.Opcode, bool) {
	switch funct3 {
	case 0x0:
		return ir.OpEQ, true
	case 0x1:
		return ir.OpNE, true
	case 0x4:
		return ir.OpLT, true
	case 0x5:
		return ir.OpGE, true
	case 0x6:
		return ir.OpLTU, true
	case 0x7:
		return ir.OpGEU, true
	default:
		return ir.OpNone, false
	}
}

// loadOpcode covers LB/LH/LW/LD/LHU/LWU. LBU (funct3 0x4) has no IR
// opcode — see DESIGN.md's note on the load-width opcode set — so it is
// deliberately left unsupported here rather than silently aliased to
// LHU's width.
func loadOpcode(funct3 uint32) (ir.Opcode, bool) {
	switch funct3 {
	case 0x0:
		return ir.OpLB, true
	case 0x1:
		return ir.OpLH, true
	case 0x2:
		return ir.OpLW, true
	case 0x3:
		return ir.OpLD, true
	case 0x5:
		return ir.OpLHU, true
	case 0x6:
		return ir.OpLWU, true
	default:
		return ir.OpNone, false
	}
}

func storeOpcode(funct3 uint32) (ir.Opcode, bool) {
	switch funct3 {
	case 0x0:
		return ir.OpSB, true
	case 0x1:
		return ir.OpSH, true
	case 0x2:
		return ir.OpSW, true
	case 0x3:
		return ir.OpSD, true
	default:
		return ir.OpNone, false
	}
}

func opImmOpcode(funct3 uint32) (ir.Opcode, bool) {
	switch funct3 {
	case 0x0:
		return ir.OpADD, true // ADDI
	case 0x4:
		return ir.OpXOR, true // XORI
	case 0x6:
		return ir.OpOR, true // ORI
	case 0x7:
		return ir.OpAND, true // ANDI
	default:
		return ir.OpNone, false
	}
}

func opOpcode(funct3, funct7 uint32) (ir.Opcode, bool) {
	switch {
	case funct3 == 0x0 && funct7 == 0x00:
		return ir.OpADD, true
	case funct3 == 0x0 && funct7 == 0x20:
		return ir.OpSUB, true
	case funct3 == 0x7 && funct7 == 0x00:
		return ir.OpAND, true
	case funct3 == 0x6 && funct7 == 0x00:
		return ir.OpOR, true
	case funct3 == 0x4 && funct7 == 0x00:
		return ir.OpXOR, true
	default:
		return ir.OpNone, false
	}
}
