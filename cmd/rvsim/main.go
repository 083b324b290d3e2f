// Package main provides the RVSim command-line interface.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvsim/cache"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/sim"
)

var (
	memSize      = flag.Int("mem", mem64MB, "Physical memory size in bytes")
	slice        = flag.Uint64("n", 5000, "Instructions per hart per scheduling slice")
	verbose      = flag.Bool("v", false, "Trace every instruction and trap")
	featuresPath = flag.String("features", "", "Path to a features JSON file")
	cacheStats   = flag.Bool("cachesim", false, "Model instruction/data caches and TLBs")
)

const mem64MB = 64 * 1024 * 1024

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	features := emu.DefaultFeatures()
	if *featuresPath != "" {
		features, err = emu.LoadFeatures(*featuresPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading features: %v\n", err)
			os.Exit(1)
		}
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	s := sim.New(*memSize, sim.WithFeatures(features))
	for _, seg := range prog.Segments {
		s.Memory().LoadSegment(seg.VirtAddr, seg.Data, seg.MemSize)
	}

	var icacheCfg, dcacheCfg *cache.Config
	if *cacheStats {
		ic := cache.DefaultICacheConfig()
		dc := cache.DefaultDCacheConfig()
		icacheCfg, dcacheCfg = &ic, &dc
	}

	hart := s.AddHart(icacheCfg, dcacheCfg)
	hart.PC = prog.EntryPoint
	hart.SetRun(true)

	tohost := s.Run(*slice, *verbose)
	s.Close()

	// By convention the halting tohost value carries the exit status in
	// its upper bits; value 1 is a clean pass.
	exitCode := int(tohost >> 1)

	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("tohost: 0x%x\n", tohost)
	}

	os.Exit(exitCode)
}
