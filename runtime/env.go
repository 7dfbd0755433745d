// Package runtime is the CORE's sole collaborator with the outside world:
// it owns the guest GPR file, the guest memory image, and the epilogue
// trampoline the emitted code tail-jumps to on block exit. Per spec.md §1
// this is explicitly out of the CORE's scope — it is implemented here only
// so the block translator and CLI harness have something concrete to run
// against end-to-end.
package runtime

// Env is everything the x64 emitter queries about the host runtime while
// generating code for one block. Implementations never see IR or code
// bytes — the emitter is the only party that interprets these values.
type Env interface {
	// GPRDisp returns the signed displacement from RBP to guest GPR i.
	GPRDisp(i uint64) int32
	// PCDisp returns the displacement from RBP to the PC slot — the slot
	// immediately after the 32 GPRs (8*32 bytes at the default 8-byte GPR
	// stride; Harness computes it as stride*32).
	PCDisp() int32
	// GuestMemBase returns the absolute address of the guest memory base,
	// materialized as an imm64 in emitted load/store sequences.
	GuestMemBase() uint64
	// EpilogueDisp returns the fixed absolute byte offset of the runtime
	// epilogue trampoline. The emitter computes each jmp site's rel32 as
	// EpilogueDisp() - (siteOffset + 4), exactly as spec §4.4 prescribes.
	EpilogueDisp() int
}
