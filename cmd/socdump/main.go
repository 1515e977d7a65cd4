package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/intuitionamiga/socrt/internal/isa"
	"github.com/intuitionamiga/socrt/internal/rtlog"
)

func main() {
	baseAddr := flag.Uint64("base", 0, "base address to disassemble the dump at")
	spaceName := flag.String("space", "", "name of the .coredef space to disassemble against (required)")
	count := flag.Int("count", 0, "stop after this many decoded instructions (0 = whole file)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: socdump [options] core.def dump.bin\n\nLoads a .coredef machine description and disassembles dump.bin against one of its declared spaces, trying every word size that space declares at each position (spec.md's PowerPC-VLE-style mixed-width streams).\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  socdump -space vle machine.coredef firmware.bin\n")
		fmt.Fprintf(os.Stderr, "  socdump -base 0x8000 -space vle -count 64 machine.coredef firmware.bin\n")
	}
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: cannot configure logger: %v\n", err)
			os.Exit(1)
		}
		rtlog.SetLogger(logger)
	}

	if flag.NArg() != 2 || *spaceName == "" {
		flag.Usage()
		os.Exit(1)
	}

	coredefPath := flag.Arg(0)
	dumpPath := flag.Arg(1)

	md, err := loadMachineDescription(coredefPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", dumpPath, err)
		os.Exit(1)
	}

	dis := isa.NewDisassembler(md)
	decoded, err := dis.Disassemble(*spaceName, data, *baseAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for i, d := range decoded {
		if *count > 0 && i >= *count {
			break
		}
		fmt.Printf("%#08x: %s\n", d.Address, d.Display)
	}
}

// loadMachineDescription parses path and every file it transitively
// includes into a validated MachineDescription.
func loadMachineDescription(path string) (*isa.MachineDescription, error) {
	diags := &isa.Diagnostics{}
	docs := isa.LoadDocumentTree(path, readIsaFile, diags)
	md := isa.Validate(docs, diags)
	if diags.HasErrors() {
		for _, d := range diags.Items() {
			fmt.Fprintln(os.Stderr, d.FormatHuman())
		}
		return nil, fmt.Errorf("machine description %s failed validation", path)
	}
	return md, nil
}

func readIsaFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
