//go:build amd64 && linux

package runtime

import (
	"fmt"
	"syscall"
	"unsafe"
)

// execBlock is the asm trampoline in trampoline_amd64.s: it loads RBP from
// frame (the raw register-file buffer's address, not the Frame struct
// itself — Frame.bytes's backing array), calls into code, and returns
// once code reaches the epilogue. Guest memory base is never passed
// through a register — per Env.GuestMemBase, the emitter bakes it into
// each load/store as an imm64 at translation time. Grounded on the
// wazero wasm-jit "jitcall" stub — a single hand-written entry point that
// bridges a Go call into raw machine code living in an mmap'd segment,
// rather than anything built atop cgo.
func execBlock(frame *byte, code uintptr)

// CodeBuffer is an mmap'd, executable region holding the epilogue trampoline
// at offset 0 followed by every block this harness has translated so far.
// Its address never changes once mapped, so GenSize (see x64.CodeGen) can
// be treated as a stable, session-wide absolute offset into it.
type CodeBuffer struct {
	mem []byte
}

// NewCodeBuffer maps size bytes RWX and writes the epilogue trampoline at
// offset 0. size must be large enough to hold every block this session will
// translate; there is no growth support, matching this harness's scope.
func NewCodeBuffer(size int) (*CodeBuffer, error) {
	mem, err := syscall.Mmap(-1, 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE|syscall.PROT_EXEC,
		syscall.MAP_PRIVATE|syscall.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("runtime: mmap code buffer: %w", err)
	}
	copy(mem, Epilogue)
	return &CodeBuffer{mem: mem}, nil
}

// Write copies code into the buffer at the given absolute offset, returning
// an error if it would run past the mapped region.
func (b *CodeBuffer) Write(offset int, code []byte) error {
	if offset < 0 || offset+len(code) > len(b.mem) {
		return fmt.Errorf("runtime: code write [%d:%d] out of bounds (cap %d)", offset, offset+len(code), len(b.mem))
	}
	copy(b.mem[offset:], code)
	return nil
}

// Close unmaps the buffer. Safe to call once all blocks it holds are done
// executing.
func (b *CodeBuffer) Close() error {
	return syscall.Munmap(b.mem)
}

// PinGuestMemory returns the absolute host address of mem's backing array,
// the value Env.GuestMemBase must report so emitted load/store sequences
// dereference the right bytes. mem must not be resized or garbage
// collected for as long as any translated block referencing this address
// can still run.
func PinGuestMemory(mem []byte) uint64 {
	if len(mem) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&mem[0])))
}

// Run invokes the block at the given offset against h's frame and guest
// memory. The block is expected to end with a tail jump to the epilogue
// trampoline at offset 0, which returns control here.
func (h *Harness) Run(buf *CodeBuffer, offset int) error {
	if offset < 0 || offset >= len(buf.mem) {
		return fmt.Errorf("runtime: block offset %d out of bounds", offset)
	}
	code := uintptr(unsafe.Pointer(&buf.mem[offset]))
	execBlock(h.Frame.baseAddr(), code)
	return nil
}
