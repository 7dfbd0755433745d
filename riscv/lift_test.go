package riscv

import (
	"testing"

	"github.com/nak3/dydra/ir"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// encodeIType builds a raw I-type word: imm[11:0] | rs1 | funct3 | rd | opcode.
func encodeIType(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeRType(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func TestLiftIType_ADDI(t *testing.T) {
	// addi x5, x0, 0x678
	inst := encodeIType(0x13, 5, 0x0, 0, 0x678)
	ops := LiftIType(ir.OpADD, inst)
	assert(t, len(ops) == 1, "expected one IR op, got %d", len(ops))
	op := ops[0]
	assert(t, op.Op == ir.OpADD, "expected ADD opcode")
	assert(t, op.A0 == ir.Reg(5), "expected rd=x5")
	assert(t, op.A1 == ir.Reg(0), "expected rs1=x0")
	assert(t, op.A2.IsImm() && op.A2.Bits == 0x678, "expected imm 0x678, got %x", op.A2.Bits)
}

func TestLiftIType_NegativeImmSignExtends(t *testing.T) {
	// addi x1, x2, -1 (imm = 0xfff)
	inst := encodeIType(0x13, 1, 0x0, 2, -1)
	ops := LiftIType(ir.OpADD, inst)
	got := int64(ops[0].A2.Bits)
	assert(t, got == -1, "expected sign-extended -1, got %d", got)
}

func TestLiftRType_XOR(t *testing.T) {
	// xor x7, x7, x7
	inst := encodeRType(0x33, 7, 0x4, 7, 7, 0x00)
	ops := LiftRType(ir.OpXOR, inst)
	assert(t, len(ops) == 1, "expected one IR op")
	op := ops[0]
	assert(t, op.Op == ir.OpXOR, "expected XOR opcode")
	assert(t, op.A0 == ir.Reg(7) && op.A1 == ir.Reg(7) && op.A2 == ir.Reg(7), "expected all operands x7")
}

func TestLiftLUI(t *testing.T) {
	// lui x5, 0x12345
	inst := uint32(0x12345) <<12 | 5<<7 | 0x37
	ops := LiftLUI(inst)
	assert(t, len(ops) == 1, "expected one IR op")
	op := ops[0]
	assert(t, op.Op == ir.OpADD, "LUI lifts to ADD")
	assert(t, op.A0 == ir.Reg(5), "expected rd=x5")
	assert(t, op.A1 == ir.Reg(0), "expected rs1=x0")
	assert(t, op.A2.Bits == 0x12345000, "expected upper imm 0x12345000, got %x", op.A2.Bits)
}

func TestLiftBranch_FourOpShape(t *testing.T) {
	// beq x1, x2, +8. imm=8 => binary 0000000001000: imm[4:1]=0100, all
	// other fields 0. imm[4:1] lives in inst[11:8], so imm[3]=1 lands in
	// inst[10]. Construct by placing bits directly using the field map.
	var inst uint32
	imm := uint32(8)
	inst |= ((imm >> 11) & 0x1) << 7
	inst |= ((imm >> 1) & 0xf) << 8
	inst |= ((imm >> 5) & 0x3f) << 25
	inst |= ((imm >> 12) & 0x1) << 31
	inst |= 1 << 15  // rs1 = x1
	inst |= 2 << 20  // rs2 = x2
	inst |= 0x63     // branch opcode

	ops := LiftBranch(ir.OpEQ, inst, 0)
	assert(t, len(ops) == 4, "expected exactly four IR ops, got %d", len(ops))
	assert(t, ops[0].Op == ir.OpEQ, "first op must be the compare-branch")
	assert(t, ops[0].Label != nil, "compare-branch must carry a label")
	assert(t, ops[1].Op == ir.OpMOV && ops[1].A1.Bits == 4, "second op must be fallthrough goto_tb to pc+4")
	assert(t, ops[2].IsLabelDef(), "third op must be the label definition")
	assert(t, ops[2].Label == ops[0].Label, "label definition must share the branch's label")
	assert(t, ops[3].Op == ir.OpMOV && ops[3].A1.Bits == 8, "fourth op must be taken goto_tb to the branch target")
}

func TestLiftLoadStoreDisplacement(t *testing.T) {
	// lw x3, -4(x2)
	inst := encodeIType(0x03, 3, 0x2, 2, -4)
	ops := LiftLoad(ir.OpLW, inst)
	op := ops[0]
	assert(t, op.A0 == ir.Reg(3) && op.A1 == ir.Reg(2), "expected rd=x3, rs1=x2")
	assert(t, int64(op.A2.Bits) == -4, "expected sign-extended displacement -4, got %d", int64(op.A2.Bits))
}
