// Package loader reads the flat guest image format used by this module's
// test fixtures and cmd/riscvjit: a raw little-endian stream of RV32I
// instruction words with no ELF header, section table, or relocation
// information. A real ELF32/64 parser is explicitly out of scope per
// spec.md §1 — this is the minimal collaborator needed so the CLI harness
// and translate package's tests have something concrete to load.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Image is a loaded flat guest program: the raw word stream and the PC
// execution starts at (always the first word of the image).
type Image struct {
	Words []uint32
	Entry uint64
}

// LoadFlatImage reads path as a stream of little-endian 32-bit words.
func LoadFlatImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return DecodeFlatImage(data)
}

// DecodeFlatImage parses an in-memory byte slice the same way
// LoadFlatImage parses a file, letting tests exercise the format without
// touching the filesystem.
func DecodeFlatImage(data []byte) (*Image, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("loader: image length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return &Image{Words: words, Entry: 0}, nil
}
