package x64

import (
	"fmt"

	"github.com/nak3/dydra/ir"
)

// EmitError reports a fatal programmer error encountered while emitting
// one ir.Op — an unsupported opcode, a missing label handle on a branch,
// or an operand-kind assertion violation. Per spec §4.5 this aborts
// translation of the whole block; it is never recovered from mid-block.
type EmitError struct {
	Op  ir.Opcode
	Msg string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("x64: emit %s: %s", e.Op, e.Msg)
}

// Emit appends the machine code for one IR op to g, dispatching on op.Op
// (or treating op as a label-definition marker when it carries one with
// no opcode). It is total over the opcode set named in spec §3: anything
// else returns an *EmitError rather than emitting partial bytes.
func (g *CodeGen) Emit(op ir.Op) error {
	if op.IsLabelDef() {
		g.emitLabelDef(op.Label)
		return nil
	}

	switch {
	case op.Op == ir.OpADD || op.Op == ir.OpSUB || op.Op == ir.OpAND || op.Op == ir.OpOR || op.Op == ir.OpXOR:
		return g.emitArith(op)
	case op.Op.IsBranch():
		return g.emitBranch(op)
	case op.Op.IsLoad():
		return g.emitLoad(op)
	case op.Op.IsStore():
		return g.emitStore(op)
	case op.Op == ir.OpJMPIM:
		return g.emitJMPIM(op)
	case op.Op == ir.OpJMP:
		return g.emitJMP(op)
	case op.Op == ir.OpMOV && op.A0.IsPC():
		return g.emitPCMov(op)
	default:
		return &EmitError{Op: op.Op, Msg: "unsupported opcode"}
	}
}

// emitRRR emits the three-address register form: load gpr[a1] into EAX,
// apply aluOp against the memory operand gpr[a2] straight into EAX, store
// EAX back to gpr[a0]. Spec §4.4 "Three-address register (RRR)".
func (g *CodeGen) emitRRR(aluOp byte, a0, a1, a2 ir.Value) {
	g.modrm32(opMovGvEv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(a1.Bits))
	g.modrm32(aluOp, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(a2.Bits))
	g.modrm32(opMovEvGv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(a0.Bits))
}

// emitRRI emits the three-address-with-immediate form: load gpr[a1] into
// EAX, apply aluOp against imm32 straight into EAX, store EAX back to
// gpr[a0]. Spec §4.4 "Three-address with immediate (RRI)".
func (g *CodeGen) emitRRI(aluOp byte, a0, a1 ir.Value, imm int32) {
	g.modrm32(opMovGvEv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(a1.Bits))
	g.emitByte(aluOp)
	g.disp32(imm)
	g.modrm32(opMovEvGv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(a0.Bits))
}

// arithOpcodes maps an IR arithmetic opcode to its RRR and RRI host
// opcodes. SUB has no RRI form — only the register-register RRR path is
// ever reachable for it (spec §4.4's zero-register folding note).
func arithOpcodes(op ir.Opcode) (rrr byte, rri byte, ok bool) {
	switch op {
	case ir.OpADD:
		return opAddGvEv, opAddEaxIv, true
	case ir.OpSUB:
		return opSubGvEv, 0, true
	case ir.OpAND:
		return opAndGvEv, opAndEaxIv, true
	case ir.OpOR:
		return opOrGvEv, opOrEaxIv, true
	case ir.OpXOR:
		return opXorGvEv, opXorEaxIv, true
	default:
		return 0, 0, false
	}
}

// emitArith implements spec §4.4's zero-register folding ladder for
// ADD/SUB/AND/OR/XOR.
func (g *CodeGen) emitArith(op ir.Op) error {
	rrrOp, rriOp, ok := arithOpcodes(op.Op)
	if !ok {
		return &EmitError{Op: op.Op, Msg: "emitArith: not an arithmetic opcode"}
	}

	// 1. a0==0: emit nothing.
	if op.A0.IsZeroReg() {
		return nil
	}

	// SUB only ever takes the RRR path; a0==0 already handled above.
	if op.Op == ir.OpSUB {
		if !op.A2.IsReg() {
			return &EmitError{Op: op.Op, Msg: "SUB requires a register a2 operand"}
		}
		g.emitRRR(rrrOp, op.A0, op.A1, op.A2)
		return nil
	}

	// 2. a2 immediate, a1==0: direct store, no arithmetic.
	if op.A2.IsImm() && op.A1.IsZeroReg() {
		g.modrm32(opMovEvIv, modRBPDisp32, regRAX)
		g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
		g.disp32(int32(op.A2.Bits))
		return nil
	}

	// 3. a2 register, a1==0: straight copy through EAX.
	if op.A2.IsReg() && op.A1.IsZeroReg() {
		g.modrm32(opMovGvEv, modRBPDisp32, regRAX)
		g.disp32(g.Runtime.GPRDisp(op.A2.Bits))
		g.modrm32(opMovEvGv, modRBPDisp32, regRAX)
		g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
		return nil
	}

	// 4. General case: RRI or RRR per a2's kind.
	if op.A2.IsImm() {
		g.emitRRI(rriOp, op.A0, op.A1, int32(op.A2.Bits))
		return nil
	}
	g.emitRRR(rrrOp, op.A0, op.A1, op.A2)
	return nil
}

// emitMovabs emits REX.W, B8+reg, and an 8-byte little-endian immediate:
// the 10-byte "MOV reg64, imm64" form used to materialize host-only
// 64-bit constants (the guest memory base, a link-register return PC).
func (g *CodeGen) emitMovabs(reg byte, v uint64) {
	g.emitBytes(0x48, 0xb8+reg)
	g.emitImm64(v)
}

// emitLoad implements spec §4.4's Load sequence for LD/LW/LH/LB/LWU/LHU.
func (g *CodeGen) emitLoad(op ir.Op) error {
	if !op.A2.IsImm() {
		return &EmitError{Op: op.Op, Msg: "emitLoad: a2 displacement must be an immediate"}
	}
	disp := int32(int64(op.A2.Bits))

	g.emitMovabs(regRAX, g.Runtime.GuestMemBase())
	g.modrm64(opMovGvEv, modRAXDirect, regRCX) // mov rcx, rax
	g.modrm32(opMovGvEv, modRBPDisp32, regRAX) // mov eax, [rbp+disp(a1)]
	g.disp32(g.Runtime.GPRDisp(op.A1.Bits))
	g.modrm64(opAddGvEv, modRCXDirect, regRAX) // add rax, rcx

	switch op.Op {
	case ir.OpLD:
		g.modrm64(opMovGvEv, modRAXDisp32, regRAX)
		g.disp32(disp)
	case ir.OpLW:
		g.modrm64(opMovsxd, modRAXDisp32, regRAX)
		g.disp32(disp)
	case ir.OpLH:
		g.modrm2byte64(opMovsxW, modRAXDisp32, regRAX)
		g.disp32(disp)
	case ir.OpLB:
		g.modrm2byte64(opMovsxB, modRAXDisp32, regRAX)
		g.disp32(disp)
	case ir.OpLWU:
		g.modrm32(opMovGvEv, modRAXDisp32, regRAX)
		g.disp32(disp)
	case ir.OpLHU:
		g.modrm2byte32(opMovzxW, modRAXDisp32, regRAX)
		g.disp32(disp)
	default:
		return &EmitError{Op: op.Op, Msg: "emitLoad: unsupported width"}
	}

	g.modrm32(opMovEvGv, modRBPDisp32, regRAX) // mov [rbp+disp(a0)], eax
	g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
	return nil
}

// emitStore implements spec §4.4's Store sequence for SD/SW/SH/SB. Per
// ir.Op's documented store convention, a0 is the base register and a1 is
// the data register — swapped relative to loads.
func (g *CodeGen) emitStore(op ir.Op) error {
	if !op.A2.IsImm() {
		return &EmitError{Op: op.Op, Msg: "emitStore: a2 displacement must be an immediate"}
	}
	disp := int32(int64(op.A2.Bits))

	g.emitMovabs(regRAX, g.Runtime.GuestMemBase())
	g.modrm64(opMovGvEv, modRAXDirect, regRCX) // mov rcx, rax
	g.modrm32(opMovGvEv, modRBPDisp32, regRAX) // mov eax, [rbp+disp(a0)]  (base)
	g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
	g.modrm64(opAddGvEv, modRCXDirect, regRAX) // add rax, rcx
	g.modrm32(opMovGvEv, modRBPDisp32, regRCX) // mov ecx, [rbp+disp(a1)]  (data)
	g.disp32(g.Runtime.GPRDisp(op.A1.Bits))

	switch op.Op {
	case ir.OpSD:
		g.modrm64(opMovEvGv, modRAXDisp32, regRCX)
		g.disp32(disp)
	case ir.OpSW:
		g.modrm32(opMovEvGv, modRAXDisp32, regRCX)
		g.disp32(disp)
	case ir.OpSH:
		g.modrm16(opMovEvGv, modRAXDisp32, regRCX)
		g.disp32(disp)
	case ir.OpSB:
		g.modrm32(opMovEbGb, modRAXDisp32, regRCX)
		g.disp32(disp)
	default:
		return &EmitError{Op: op.Op, Msg: "emitStore: unsupported width"}
	}
	return nil
}

// branchJcc maps an IR compare-and-branch opcode to its two-byte Jcc
// opcode, per spec §4.4's signed/unsigned mapping table.
func branchJcc(op ir.Opcode) (jcc byte, ok bool) {
	switch op {
	case ir.OpEQ:
		return jccE, true
	case ir.OpNE:
		return jccNE, true
	case ir.OpLT:
		return jccL, true
	case ir.OpGE:
		return jccGE, true
	case ir.OpLTU:
		return jccB, true
	case ir.OpGEU:
		return jccAE, true
	default:
		return 0, false
	}
}

// emitBranch implements spec §4.4's Branch sequence: MOV EAX,[a0]; CMP
// EAX,[a1]; jcc rel32, recording the placeholder site on the op's label
// so the eventual label definition can patch it.
func (g *CodeGen) emitBranch(op ir.Op) error {
	jcc, ok := branchJcc(op.Op)
	if !ok {
		return &EmitError{Op: op.Op, Msg: "emitBranch: not a branch opcode"}
	}
	if op.Label == nil {
		return &EmitError{Op: op.Op, Msg: "emitBranch: missing label handle"}
	}

	g.modrm32(opMovGvEv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
	g.modrm32(opCmpGvEv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.GPRDisp(op.A1.Bits))

	g.emitBytes(0x0f, jcc)
	site := g.GenSize
	g.disp32(0) // placeholder, patched when the label is bound
	op.Label.AddPendingSite(site)
	return nil
}

// emitMovEaxImm32 emits the reg-direct "MOV EAX, imm32" form: B8, then a
// 4-byte little-endian immediate. No ModR/M byte and no REX prefix.
func (g *CodeGen) emitMovEaxImm32(v uint32) {
	g.emitByte(opMovEaxIv)
	g.emitWord(v, 4)
}

// emitJMPToEpilogue emits JMP rel32 with the displacement computed against
// the runtime's fixed epilogue offset.
func (g *CodeGen) emitJMPToEpilogue() {
	g.emitByte(opJmpRel32)
	rel := int32(g.Runtime.EpilogueDisp() - (g.GenSize + 4))
	g.disp32(rel)
}

// emitJMPIM implements spec §4.4's block terminator: writes the guest PC
// slot to op.A1's immediate target, materializing op.A2 (the instruction's
// own fallthrough address) into the link register first when op.A0 names
// one — the JAL link-register write (JALR lifts to OpJMP instead).
func (g *CodeGen) emitJMPIM(op ir.Op) error {
	if !op.A1.IsImm() {
		return &EmitError{Op: op.Op, Msg: "emitJMPIM: target must be an immediate"}
	}
	if !op.A0.IsZeroReg() {
		if !op.A2.IsImm() {
			return &EmitError{Op: op.Op, Msg: "emitJMPIM: link value must be an immediate when a0 is non-zero"}
		}
		g.emitMovabs(regRAX, op.A2.Bits)
		g.modrm64(opMovEvGv, modRBPDisp32, regRAX)
		g.disp32(g.Runtime.GPRDisp(op.A0.Bits))
	}
	g.emitMovEaxImm32(uint32(op.A1.Bits))
	g.modrm32(opMovEvGv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.PCDisp())
	g.emitJMPToEpilogue()
	return nil
}

// emitJMP implements spec §4.4's register-indirect jump: only the
// canonical JALR-to-RA-with-zero-link case is supported, which collapses
// to a bare jump to the epilogue.
func (g *CodeGen) emitJMP(op ir.Op) error {
	if !op.A0.IsZeroReg() {
		return &EmitError{Op: op.Op, Msg: "emitJMP: only the zero-link JALR-to-RA form is supported"}
	}
	g.emitJMPToEpilogue()
	return nil
}

// emitPCMov implements the goto_tb terminator (ir.NewGotoTB): MOV
// EAX,imm32; MOV [RBP+pc_disp],EAX; JMP rel32 to the epilogue.
func (g *CodeGen) emitPCMov(op ir.Op) error {
	if !op.A1.IsImm() {
		return &EmitError{Op: op.Op, Msg: "emitPCMov: source must be an immediate"}
	}
	g.emitMovEaxImm32(uint32(op.A1.Bits))
	g.modrm32(opMovEvGv, modRBPDisp32, regRAX)
	g.disp32(g.Runtime.PCDisp())
	g.emitJMPToEpilogue()
	return nil
}

// emitLabelDef binds label to the current gen_size and patches every
// previously recorded pending site, rewriting each 32-bit placeholder to
// label.Offset - (site + 4). Spec §4.4 "Label definition marker."
func (g *CodeGen) emitLabelDef(label *ir.Label) {
	label.Bind(g.GenSize)
	for _, site := range label.PendingSites {
		rel := int32(label.Offset - (site + 4))
		idx := g.codeIndex(site)
		g.Code[idx] = byte(rel)
		g.Code[idx+1] = byte(rel >> 8)
		g.Code[idx+2] = byte(rel >> 16)
		g.Code[idx+3] = byte(rel >> 24)
	}
}
