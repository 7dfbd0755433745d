// Command riscvjit is the CLI harness around the translator: it loads a
// flat guest image, translates and executes it block by block, and prints
// the final GPR file. Grounded on oisee-z80-optimizer's cmd/z80opt — a
// cobra root command with one subcommand per concern.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nak3/dydra/config"
	"github.com/nak3/dydra/internal/xlog"
	"github.com/nak3/dydra/loader"
	"github.com/nak3/dydra/runtime"
	"github.com/nak3/dydra/translate"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "riscvjit",
		Short: "A minimal RISC-V-to-x86-64 dynamic binary translator",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	runCmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load, translate, and execute a flat guest image to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(args[0], configPath)
		},
	}

	liftCmd := &cobra.Command{
		Use:   "lift <hex-word>",
		Short: "Print the IR sequence a single guest word lifts to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return liftWord(args[0])
		},
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm",
		Short: "List the guest opcodes this translator recognizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			printRecognizedOpcodes()
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liftCmd, disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// maxBlocks bounds the block-dispatch loop below so a guest image whose PC
// never leaves the image can't hang the CLI forever.
const maxBlocks = 1_000_000

func runImage(path, configPath string) error {
	opts := config.Options{}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		opts = loaded
	}

	xlog.Install(xlog.NewHandler(os.Stderr, slog.LevelInfo, opts.Debug))

	img, err := loader.LoadFlatImage(path)
	if err != nil {
		return err
	}

	guestMem := make([]byte, 1<<20)
	memBase := runtime.PinGuestMemory(guestMem)
	if opts.MemBase != 0 {
		memBase = opts.MemBase
	}
	h := runtime.NewHarnessWithStride(guestMem, memBase, opts.GPRStride)
	h.SetPC(img.Entry)

	buf, err := runtime.NewCodeBuffer(64 * 1024)
	if err != nil {
		return err
	}
	defer buf.Close()

	// Dispatch loop: translate and run one basic block at a time, starting
	// over at whatever guest PC the previous block left behind, until the
	// image runs off its own end or maxBlocks is hit. Each block is
	// (re)placed at the buffer's next free offset; TranslateBlock needs
	// that offset up front so its jumps to the epilogue compute the right
	// rel32 (see x64.NewCodeGen's startOffset contract).
	offset := runtime.EpilogueSize
	for i := 0; i < maxBlocks; i++ {
		pc := h.GetPC()
		wordIdx := (pc - img.Entry) / 4
		if wordIdx >= uint64(len(img.Words)) {
			break
		}

		gen, err := translate.TranslateBlock(img.Words[wordIdx:], pc, offset, h)
		if err != nil {
			return err
		}
		if err := buf.Write(offset, gen.Code); err != nil {
			return err
		}
		if err := h.Run(buf, offset); err != nil {
			return err
		}
		offset += len(gen.Code)
	}

	for i := 0; i < runtime.NumGPR; i++ {
		fmt.Printf("x%-2d = %#018x\n", i, h.GetGPR(uint64(i)))
	}
	return nil
}

func liftWord(hexWord string) error {
	word, ops, err := translate.LiftHexWord(hexWord)
	if err != nil {
		return err
	}
	fmt.Printf("word %#08x lifts to:\n", word)
	for _, op := range ops {
		fmt.Printf("  %s\n", op.Op)
	}
	return nil
}

func printRecognizedOpcodes() {
	for _, name := range translate.RecognizedOpcodes() {
		fmt.Println(name)
	}
}
