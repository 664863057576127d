// Package main provides the entry point for cbp2025.
// cbp2025 is a conditional branch prediction simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/cbpsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("cbp2025 - Conditional Branch Prediction Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: cbpsim [options] <trace file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -predictor Predictor to simulate (always-taken, bimodal, perceptron, mlp)")
	fmt.Println("  -config    Path to predictor configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cbpsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cbpsim' instead.")
	}
}
