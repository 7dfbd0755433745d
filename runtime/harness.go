package runtime

import (
	"encoding/binary"
	"fmt"
)

const (
	// NumGPR is the number of guest general-purpose registers, x0..x31.
	NumGPR = 32
	// DefaultGPRStride is the byte distance between consecutive guest GPR
	// slots when a caller doesn't override it (config.Options.GPRStride's
	// default, per spec §4.4).
	DefaultGPRStride = 8
	// epilogueOffset is where the epilogue trampoline lives in the shared
	// code buffer: byte 0. Every translated block is appended after it, so
	// EpilogueDisp is a session-wide constant rather than something that
	// has to be recomputed per block.
	epilogueOffset = 0
)

// Epilogue is the runtime-supplied trampoline body emitted code tail-jumps
// to on block exit: a bare ret, since this harness invokes generated code
// as an ordinary call and the return address is already on the stack.
var Epilogue = []byte{0xc3}

// EpilogueSize is the first free offset in a fresh CodeBuffer, right after
// the epilogue trampoline NewCodeBuffer writes at offset 0.
const EpilogueSize = 1

// Frame is the host memory region RBP points at while emitted code runs:
// NumGPR GPR slots followed by one PC slot, each stride bytes wide (stride
// must be at least 8 to hold a uint64). Its backing array's address never
// changes once allocated, which is what makes every GPR displacement fit
// comfortably inside a signed 32-bit offset — see SPEC_FULL.md's "GPR
// displacement range" decision. Register values live in a raw byte buffer
// rather than a Go array so stride is a runtime, not compile-time,
// parameter — config.Options.GPRStride threads through to here.
type Frame struct {
	bytes  []byte
	stride uint32
}

// newFrame allocates a zeroed Frame with the given GPR stride.
func newFrame(stride uint32) *Frame {
	if stride < 8 {
		stride = DefaultGPRStride
	}
	return &Frame{bytes: make([]byte, uint64(stride)*uint64(NumGPR+1)), stride: stride}
}

// baseAddr returns the address execBlock loads into RBP: the frame
// buffer's backing array.
func (f *Frame) baseAddr() *byte {
	return &f.bytes[0]
}

func (f *Frame) getGPR(i uint64) uint64 {
	off := i * uint64(f.stride)
	return binary.LittleEndian.Uint64(f.bytes[off : off+8])
}

func (f *Frame) setGPR(i uint64, v uint64) {
	off := i * uint64(f.stride)
	binary.LittleEndian.PutUint64(f.bytes[off:off+8], v)
}

func (f *Frame) pcOff() uint64 {
	return uint64(f.stride) * NumGPR
}

func (f *Frame) getPC() uint64 {
	off := f.pcOff()
	return binary.LittleEndian.Uint64(f.bytes[off : off+8])
}

func (f *Frame) setPC(v uint64) {
	off := f.pcOff()
	binary.LittleEndian.PutUint64(f.bytes[off:off+8], v)
}

// Harness is the concrete runtime collaborator: it owns a guest register
// frame, a flat guest memory image, and the generated code buffer's
// epilogue. It implements Env.
type Harness struct {
	Frame    *Frame
	GuestMem []byte
	memBase  uint64
}

// NewHarness builds a harness over the given guest memory image using the
// default GPR stride (8 bytes). memBase is the absolute address callers
// should treat the image as based at — in this in-process harness that's
// simply the slice's backing address once pinned, but callers running
// against a real mmap'd guest image pass that address directly.
func NewHarness(guestMem []byte, memBase uint64) *Harness {
	return NewHarnessWithStride(guestMem, memBase, DefaultGPRStride)
}

// NewHarnessWithStride is NewHarness with an explicit GPR stride, wired
// from config.Options.GPRStride by cmd/riscvjit.
func NewHarnessWithStride(guestMem []byte, memBase uint64, gprStride uint32) *Harness {
	return &Harness{Frame: newFrame(gprStride), GuestMem: guestMem, memBase: memBase}
}

// GPRDisp returns the signed displacement from RBP (the Frame's address)
// to guest GPR i.
func (h *Harness) GPRDisp(i uint64) int32 {
	if i >= NumGPR {
		panic(fmt.Sprintf("runtime: GPR index %d out of range", i))
	}
	return int32(i * uint64(h.Frame.stride))
}

// PCDisp returns the displacement to the PC slot: stride*NumGPR, the byte
// immediately after the last GPR slot.
func (h *Harness) PCDisp() int32 {
	return int32(uint64(h.Frame.stride) * NumGPR)
}

// GuestMemBase returns the absolute guest-memory base address.
func (h *Harness) GuestMemBase() uint64 {
	return h.memBase
}

// EpilogueDisp returns the fixed absolute offset of the epilogue trampoline
// within the shared code buffer. This harness always places the epilogue
// at offset 0 and appends every translated block after it.
func (h *Harness) EpilogueDisp() int {
	return epilogueOffset
}

// GetGPR returns the current value of guest GPR i.
func (h *Harness) GetGPR(i uint64) uint64 {
	return h.Frame.getGPR(i)
}

// SetGPR sets guest GPR i, dropping writes to the zero register.
func (h *Harness) SetGPR(i uint64, v uint64) {
	if i == 0 {
		return
	}
	h.Frame.setGPR(i, v)
}

// GetPC returns the guest PC slot's current value — the address a block
// just wrote via its terminator (goto_tb or JMPIM) before tail-jumping to
// the epilogue. A block ending in JMP (JALR) does not write the slot, so
// it still holds its previous value.
func (h *Harness) GetPC() uint64 {
	return h.Frame.getPC()
}

// SetPC sets the guest PC slot, used by callers to seed the entry point
// before the first block runs.
func (h *Harness) SetPC(v uint64) {
	h.Frame.setPC(v)
}
