// Command riscvdump lifts a range of guest words from a flat image and
// prints their IR, one line per ir.Op, for quick front-end inspection
// without cobra's subcommand overhead. Grounded on rcornwell-S370's use of
// github.com/pborman/getopt/v2 for a small flag-only tool.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/nak3/dydra/config"
	"github.com/nak3/dydra/ir"
	"github.com/nak3/dydra/loader"
	"github.com/nak3/dydra/translate"
)

// wordDump is the JSON rendering of one lifted guest word, used when
// config.Options.DumpFormat is "json".
type wordDump struct {
	PC    uint64   `json:"pc"`
	Word  uint32   `json:"word"`
	Ops   []string `json:"ops,omitempty"`
	Error string   `json:"error,omitempty"`
}

func main() {
	optFile := getopt.StringLong("file", 'f', "", "Flat guest image to read")
	optOffset := getopt.Uint64Long("offset", 'o', 0, "Word offset to start at")
	optCount := getopt.Uint64Long("count", 'n', 1, "Number of words to lift")
	optConfig := getopt.StringLong("config", 'c', "", "Path to a TOML config file (for dump_format)")
	optHelp := getopt.BoolLong("help", 'h', false, "Help")
	getopt.Parse()

	if *optHelp || *optFile == "" {
		getopt.Usage()
		os.Exit(0)
	}

	dumpFormat := "text"
	if *optConfig != "" {
		opts, err := config.Load(*optConfig)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dumpFormat = opts.DumpFormat
	}

	img, err := loader.LoadFlatImage(*optFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	start := *optOffset
	end := start + *optCount
	if end > uint64(len(img.Words)) {
		end = uint64(len(img.Words))
	}

	for i := start; i < end; i++ {
		pc := img.Entry + i*4
		word := img.Words[i]
		ops, _, err := translate.DecodeWord(word, pc)
		if dumpFormat == "json" {
			printJSON(pc, word, ops, err)
			continue
		}
		printText(pc, word, ops, err)
	}
}

func printText(pc uint64, word uint32, ops []ir.Op, err error) {
	if err != nil {
		fmt.Printf("%#08x: %#08x: error: %v\n", pc, word, err)
		return
	}
	fmt.Printf("%#08x: %#08x:\n", pc, word)
	for _, op := range ops {
		fmt.Printf("  %s\n", op.Op)
	}
}

func printJSON(pc uint64, word uint32, ops []ir.Op, err error) {
	d := wordDump{PC: pc, Word: word}
	if err != nil {
		d.Error = err.Error()
	} else {
		for _, op := range ops {
			d.Ops = append(d.Ops, op.Op.String())
		}
	}
	enc, mErr := json.Marshal(d)
	if mErr != nil {
		fmt.Fprintln(os.Stderr, mErr)
		return
	}
	fmt.Println(string(enc))
}
