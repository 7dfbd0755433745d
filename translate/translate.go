// Package translate is the block translator: it decodes guest words one at
// a time, lifts each to IR, and emits the corresponding host bytes,
// stopping at the first control-transfer instruction per spec §2.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/nak3/dydra/ir"
	"github.com/nak3/dydra/runtime"
	"github.com/nak3/dydra/x64"
)

// TranslateBlock translates one basic block starting at words[0] (guest PC
// startPC) into host machine code. startOffset is the position in the
// shared session code buffer this block's bytes will land at once
// appended — it is threaded straight into x64.NewCodeGen so every
// relative displacement it emits (branch/jump rel32) is computed against
// the block's real home rather than offset 0. TranslateBlock stops after
// lifting and emitting the first control-transfer instruction (branch,
// JAL, or JALR), or after exhausting words, whichever comes first; in
// both cases the block ends with a tail jump to the runtime epilogue per
// spec §2 — a block that runs out of words without hitting one gets an
// appended goto_tb write of the fallthrough PC plus the epilogue jump so
// control always returns to the runtime instead of falling off the end
// of the generated bytes.
func TranslateBlock(words []uint32, startPC uint64, startOffset int, env runtime.Env) (*x64.CodeGen, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("translate: empty block at pc %#x", startPC)
	}

	gen := x64.NewCodeGen(startOffset, env)
	pc := startPC
	opCount := 0

	for i, word := range words {
		ops, terminal, err := decodeOne(word, pc)
		if err != nil {
			return nil, fmt.Errorf("translate: decode word %d at pc %#x: %w", i, pc, err)
		}

		for _, op := range ops {
			if err := gen.Emit(op); err != nil {
				return nil, fmt.Errorf("translate: emit word %d at pc %#x: %w", i, pc, err)
			}
			opCount++
		}

		pc += 4
		if terminal {
			slog.Debug("translated block", "start_pc", startPC, "ops", opCount, "words", i+1)
			return gen, nil
		}
	}

	if err := gen.Emit(ir.NewGotoTB(ir.Imm(pc))); err != nil {
		return nil, fmt.Errorf("translate: emit fallthrough epilogue jump at pc %#x: %w", pc, err)
	}
	opCount++

	slog.Debug("translated block", "start_pc", startPC, "ops", opCount, "words", len(words))
	return gen, nil
}
