// Package config loads the harness's TOML configuration document. Grounded
// on rcornwell-S370/config/configparser for the shape — a small typed
// options holder feeding the runtime — but decoded with
// github.com/BurntSushi/toml since the harness config is a flat key/value
// document rather than S/370's device-list grammar.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Options is the harness's full configuration surface.
type Options struct {
	// Image is the path to a flat guest image. It is decoded but read by
	// neither command: both take the image path from their own arguments.
	Image string `toml:"image"`
	// MemBase, when non-zero, overrides cmd/riscvjit's default of pinning
	// guest memory dynamically (runtime.PinGuestMemory) with this fixed
	// host address instead — for harnesses that map guest memory at a
	// caller-chosen address ahead of time.
	MemBase uint64 `toml:"mem_base"`
	// GPRStride is the byte distance between consecutive guest GPR slots,
	// threaded into runtime.NewHarnessWithStride. Defaults to 8 (spec
	// §4.4); configurable so cmd/riscvjit can exercise non-default frame
	// layouts without recompiling.
	GPRStride uint32 `toml:"gpr_stride"`
	// Debug gates xlog's Debug-level output.
	Debug bool `toml:"debug"`
	// DumpFormat selects cmd/riscvdump's output rendering ("text" or
	// "json"), read via the dump tool's --config flag.
	DumpFormat string `toml:"dump_format"`
}

// defaults mirrors the zero-config values a fresh Options should carry.
func defaults() Options {
	return Options{
		GPRStride:  8,
		DumpFormat: "text",
	}
}

// Load reads and decodes a TOML document at path, filling in defaults for
// any field the document omits.
func Load(path string) (Options, error) {
	opts := defaults()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return opts, nil
}

// Parse decodes an in-memory TOML document, letting tests exercise the
// format without touching the filesystem.
func Parse(doc string) (Options, error) {
	opts := defaults()
	if _, err := toml.Decode(doc, &opts); err != nil {
		return Options{}, fmt.Errorf("config: decode: %w", err)
	}
	return opts, nil
}
