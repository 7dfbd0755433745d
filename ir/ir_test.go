package ir

import "testing"

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestValueConstructors(t *testing.T) {
	r := Reg(5)
	assert(t, r.IsReg(), "expected Reg value")
	assert(t, !r.IsZeroReg(), "x5 is not the zero register")

	z := Reg(0)
	assert(t, z.IsZeroReg(), "x0 must report as the zero register")

	i := Imm(0x1234)
	assert(t, i.IsImm(), "expected Imm value")
	assert(t, i.Bits == 0x1234, "immediate payload mismatch: got %x", i.Bits)

	pc := PC()
	assert(t, pc.IsPC(), "expected PC singleton")
}

func TestNewGotoTBRequiresImmediate(t *testing.T) {
	op := NewGotoTB(Imm(4))
	assert(t, op.Op == OpMOV, "goto_tb must be a MOV op")
	assert(t, op.A0.IsPC(), "goto_tb target must be the PC operand")
	assert(t, op.A1.IsImm(), "goto_tb source must be an immediate")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when building goto_tb with a non-immediate operand")
		}
	}()
	NewGotoTB(Reg(1))
}

func TestLabelDefAndPendingSites(t *testing.T) {
	l := NewLabel()
	def := NewLabelDef(l)
	assert(t, def.IsLabelDef(), "expected label-definition marker")

	l.AddPendingSite(10)
	l.AddPendingSite(20)
	assert(t, len(l.PendingSites) == 2, "expected two pending sites, got %d", len(l.PendingSites))

	l.Bind(100)
	assert(t, l.Offset == 100, "expected bound offset 100, got %d", l.Offset)
}

func TestBranchOpShape(t *testing.T) {
	label := NewLabel()
	branch := New4OpWithLabel(OpEQ, Reg(1), Reg(2), Imm(8), label)
	assert(t, branch.Op.IsBranch(), "OpEQ must report as a branch")
	assert(t, branch.A0.IsReg() && branch.A1.IsReg(), "branch operands must be registers")
	assert(t, branch.A2.IsImm(), "branch target must be an immediate")
	assert(t, branch.Label == label, "branch must carry the shared label")
}
