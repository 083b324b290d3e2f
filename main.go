// Package main provides the entry point for RVSim.
// RVSim is a 64-bit RISC-V instruction-set simulator.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("RVSim - RISC-V Instruction Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -n         Instructions per hart per scheduling slice")
	fmt.Println("  -mem       Physical memory size in bytes")
	fmt.Println("  -features  Path to a features JSON file")
	fmt.Println("  -cachesim  Model instruction/data caches and TLBs")
	fmt.Println("  -v         Trace every instruction and trap")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
