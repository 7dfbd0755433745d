package riscv

import "github.com/nak3/dydra/ir"

// LiftRType lifts an R-type ADD/SUB/AND/OR/XOR instruction into the single
// 3-op (RRR) IR record: a0=rd, a1=rs1, a2=rs2.
func LiftRType(op ir.Opcode, inst uint32) []ir.Op {
	rd := rdAddr(inst)
	rs1 := rs1Addr(inst)
	rs2 := rs2Addr(inst)
	return []ir.Op{ir.New3Op(op, ir.Reg(rd), ir.Reg(rs1), ir.Reg(rs2))}
}

// LiftIType lifts an I-type arithmetic/logic instruction (ADDI/ANDI/ORI/
// XORI) into the single 3-op (RRI) IR record: a0=rd, a1=rs1, a2=Imm(imm).
// RISC-V I-type immediates are sign-extended regardless of the operation.
func LiftIType(op ir.Opcode, inst uint32) []ir.Op {
	rd := rdAddr(inst)
	rs1 := rs1Addr(inst)
	imm := iImmSignExt(inst)
	return []ir.Op{ir.New3Op(op, ir.Reg(rd), ir.Reg(rs1), ir.Imm(uint64(imm)))}
}

// LiftLUI lifts LUI into (ADD, rd, Reg0, Imm(upper)).
func LiftLUI(inst uint32) []ir.Op {
	rd := rdAddr(inst)
	upper := uImm(inst)
	return []ir.Op{ir.New3Op(ir.OpADD, ir.Reg(rd), ir.Reg(0), ir.Imm(upper))}
}

// LiftJALR lifts JALR into the single (JMP, rd, rs1, Imm12) IR record. Only
// the canonical JALR-to-RA-with-zero-link form is supported by the emitter;
// the lifter still produces the general shape so decoding stays uniform.
func LiftJALR(inst uint32) []ir.Op {
	rd := rdAddr(inst)
	rs1 := rs1Addr(inst)
	imm12 := iImm(inst)
	return []ir.Op{ir.New3Op(ir.OpJMP, ir.Reg(rd), ir.Reg(rs1), ir.Imm(imm12))}
}

// LiftBranch lifts one of BEQ/BNE/BLT/BGE/BLTU/BGEU at instrPC into the
// four required IR ops, in order: the compare-branch op, the fallthrough
// goto_tb, the label definition, and the taken-target goto_tb.
func LiftBranch(op ir.Opcode, inst uint32, instrPC uint64) []ir.Op {
	rs1 := rs1Addr(inst)
	rs2 := rs2Addr(inst)
	target := uint64(int64(instrPC) + bImm(inst))
	fallthroughPC := instrPC + 4

	label := ir.NewLabel()

	cmp := ir.New4OpWithLabel(op, ir.Reg(rs1), ir.Reg(rs2), ir.Imm(target), label)
	takenFallthrough := ir.NewGotoTB(ir.Imm(fallthroughPC))
	labelDef := ir.NewLabelDef(label)
	takenTarget := ir.NewGotoTB(ir.Imm(target))

	return []ir.Op{cmp, takenFallthrough, labelDef, takenTarget}
}

// LiftJAL lifts JAL at instrPC: if rd!=0 the link register receives
// instrPC+4 via the link-register path of the JMPIM terminator; control
// always transfers to the absolute jump target. a2 carries the link value
// (instrPC+4) so the emitter can materialize it without recomputing it
// from the jump target.
func LiftJAL(inst uint32, instrPC uint64) []ir.Op {
	rd := rdAddr(inst)
	target := uint64(int64(instrPC) + jImm(inst))
	return []ir.Op{ir.New3Op(ir.OpJMPIM, ir.Reg(rd), ir.Imm(target), ir.Imm(instrPC+4))}
}

// LiftLoad lifts LD/LW/LH/LB/LWU/LHU into the single 3-op (a0=rd, a1=rs1,
// a2=Imm(disp12)) IR record.
func LiftLoad(op ir.Opcode, inst uint32) []ir.Op {
	rd := rdAddr(inst)
	rs1 := rs1Addr(inst)
	disp := iImmSignExt(inst)
	return []ir.Op{ir.New3Op(op, ir.Reg(rd), ir.Reg(rs1), ir.Imm(uint64(disp)))}
}

// LiftStore lifts SD/SW/SH/SB into the single 3-op (a0=rs1/base, a1=rs2/
// data, a2=Imm(disp12)) IR record. Note this is the opposite operand order
// from loads: spec §4.4's store sequence addresses memory from a0 and
// fetches the value to write from a1, matching the emitter's literal
// "load address from a0, data from a1" contract.
func LiftStore(op ir.Opcode, inst uint32) []ir.Op {
	rs1 := rs1Addr(inst)
	rs2 := rs2Addr(inst)
	disp := sImm(inst)
	return []ir.Op{ir.New3Op(op, ir.Reg(rs1), ir.Reg(rs2), ir.Imm(uint64(disp)))}
}
