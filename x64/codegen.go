// Package x64 is the back-end emitter: it turns an ir.Op stream into
// x86-64 machine code appended to a CodeGen's Code buffer, following the
// ModR/M-encoded contracts in spec §4.3–§4.5.
package x64

import "github.com/nak3/dydra/runtime"

// CodeGen accumulates emitted machine code for one translated block. Code
// is always indexed from 0 (it's copied into the shared buffer at
// startOffset later, by the caller); GenSize tracks the absolute position
// those bytes will occupy once copied, which is what every rel32
// computation needs. codeIndex converts an absolute GenSize-space offset
// back to a Code-space index.
type CodeGen struct {
	Code        []byte
	GenSize     int
	startOffset int
	Runtime     runtime.Env
}

// NewCodeGen starts a CodeGen at the given absolute buffer offset — the
// position in the shared session code buffer this block's bytes will land
// at once appended, needed so relative displacements compute correctly
// before the bytes are actually copied into that buffer.
func NewCodeGen(startOffset int, env runtime.Env) *CodeGen {
	return &CodeGen{GenSize: startOffset, startOffset: startOffset, Runtime: env}
}

// codeIndex converts an absolute offset (as recorded by a pending branch
// site, itself a past value of GenSize) into an index into Code.
func (g *CodeGen) codeIndex(absOffset int) int {
	return absOffset - g.startOffset
}

func (g *CodeGen) emitByte(b byte) {
	g.Code = append(g.Code, b)
	g.GenSize++
}

func (g *CodeGen) emitBytes(bs ...byte) {
	g.Code = append(g.Code, bs...)
	g.GenSize += len(bs)
}

// emitWord writes the low n bytes of word in little-endian order.
func (g *CodeGen) emitWord(word uint32, n int) {
	for i := 0; i < n; i++ {
		g.emitByte(byte(word >> (8 * i)))
	}
}

// disp32 emits a signed 32-bit displacement.
func (g *CodeGen) disp32(d int32) {
	g.emitWord(uint32(d), 4)
}

// emitImm64 writes a full 64-bit immediate in little-endian order, used by
// the movabs-style guest-memory-base and link-register materializations.
func (g *CodeGen) emitImm64(v uint64) {
	g.emitWord(uint32(v), 4)
	g.emitWord(uint32(v>>32), 4)
}

// Target register encoding, spec §4.3.
const (
	regRAX byte = 0
	regRCX byte = 1
)

// ModR/M base constants: the (mod, r/m) pair fixed per operation, with the
// reg field ORed in by the modrm* helpers below.
const (
	modRBPDisp32 byte = 0x85 // mod=10, r/m=101 (RBP+disp32): guest GPR/PC slot access
	modRAXDisp32 byte = 0x80 // mod=10, r/m=000 (RAX+disp32): guest memory access
	modRAXDirect byte = 0xc0 // mod=11, r/m=000 (RAX): register-register, RAX as r/m
	modRCXDirect byte = 0xc1 // mod=11, r/m=001 (RCX): register-register, RCX as r/m
)

// Single-byte and two-byte x86 opcodes used by the emitters, named after
// their Intel mnemonics.
const (
	opMovEvIv  = 0xc7 // MOV r/m32, imm32
	opMovGvEv  = 0x8b // MOV r32, r/m32
	opMovEvGv  = 0x89 // MOV r/m32, r32
	opMovEbGb  = 0x88 // MOV r/m8, r8
	opMovEaxIv = 0xb8 // MOV eAX, imm32 (reg-direct, no ModR/M)
	opAddGvEv  = 0x03 // ADD r32, r/m32
	opAddEaxIv = 0x05 // ADD eAX, imm32
	opSubGvEv  = 0x2b // SUB r32, r/m32
	opAndGvEv  = 0x23 // AND r32, r/m32
	opAndEaxIv = 0x25 // AND eAX, imm32
	opOrGvEv   = 0x0b // OR r32, r/m32
	opOrEaxIv  = 0x0d // OR eAX, imm32
	opXorGvEv  = 0x33 // XOR r32, r/m32
	opXorEaxIv = 0x35 // XOR eAX, imm32
	opCmpGvEv  = 0x3b // CMP r32, r/m32
	opMovsxd   = 0x63 // MOVSXD r64, r/m32
	opJmpRel32 = 0xe9
)

// Two-byte (0F xx) opcodes, packed high-byte-first so modrm2byte* can split
// them with a single shift.
const (
	opMovzxW uint16 = 0x0fb7
	opMovzxB uint16 = 0x0fb6
	opMovsxW uint16 = 0x0fbf
	opMovsxB uint16 = 0x0fbe
)

// Two-byte Jcc opcodes (0F 8x), indexed by IR branch opcode in emitBranch.
const (
	jccE  = 0x84
	jccNE = 0x85
	jccL  = 0x8c
	jccGE = 0x8d
	jccB  = 0x82
	jccAE = 0x83
)

// modrm64 emits REX.W, op, and a ModR/M byte: 3 bytes total.
func (g *CodeGen) modrm64(op byte, modBase byte, reg3 byte) {
	g.emitBytes(0x48, op, modBase|(reg3<<3))
}

// modrm2byte64 emits REX.W, the two opcode bytes, and a ModR/M byte: 4
// bytes total.
func (g *CodeGen) modrm2byte64(op uint16, modBase byte, reg3 byte) {
	g.emitBytes(0x48, byte(op>>8), byte(op), modBase|(reg3<<3))
}

// modrm32 emits op and a ModR/M byte: 2 bytes total, no REX prefix.
func (g *CodeGen) modrm32(op byte, modBase byte, reg3 byte) {
	g.emitBytes(op, modBase|(reg3<<3))
}

// modrm16 emits the 0x66 operand-size prefix, op, and a ModR/M byte: 3
// bytes total.
func (g *CodeGen) modrm16(op byte, modBase byte, reg3 byte) {
	g.emitBytes(0x66, op, modBase|(reg3<<3))
}

// modrm2byte32 emits the two opcode bytes and a ModR/M byte: 3 bytes
// total, no REX prefix.
func (g *CodeGen) modrm2byte32(op uint16, modBase byte, reg3 byte) {
	g.emitBytes(byte(op>>8), byte(op), modBase|(reg3<<3))
}
