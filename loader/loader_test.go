package loader

import "testing"

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestDecodeFlatImageLittleEndian(t *testing.T) {
	// addi x5, x0, 0x678 encoded little-endian, followed by a second word.
	data := []byte{0x93, 0x02, 0x80, 0x67, 0xef, 0x00, 0x00, 0x00}
	img, err := DecodeFlatImage(data)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(img.Words) == 2, "expected 2 words, got %d", len(img.Words))
	assert(t, img.Words[0] == 0x678002_93, "expected first word 0x67800293, got %#x", img.Words[0])
	assert(t, img.Entry == 0, "expected entry 0")
}

func TestDecodeFlatImageRejectsUnalignedLength(t *testing.T) {
	_, err := DecodeFlatImage([]byte{0x01, 0x02, 0x03})
	assert(t, err != nil, "expected error for a non-multiple-of-4 length")
}
