// Package main provides the entry point for the branch prediction
// simulator CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nkanderson/cbp2025/bpred"
	"github.com/nkanderson/cbp2025/sim"
	"github.com/nkanderson/cbp2025/trace"
)

var (
	predictorKind = flag.String("predictor", "",
		"Predictor to simulate (always-taken, bimodal, perceptron, mlp)")
	configPath = flag.String("config", "", "Path to predictor configuration JSON file")
	windowSize = flag.Int("window", 0, "Maximum in-flight branches (0 = default)")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: cbpsim [options] <trace file>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)

	// Assemble predictor configuration. The -predictor flag overrides the
	// kind from the config file.
	var config *bpred.Config
	if *configPath != "" {
		var err error
		config, err = bpred.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading predictor config: %v\n", err)
			os.Exit(1)
		}
	} else {
		config = bpred.DefaultConfig()
	}
	if *predictorKind != "" {
		config.Predictor = *predictorKind
	}

	predictor, err := bpred.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating predictor: %v\n", err)
		os.Exit(1)
	}

	branches, err := trace.Load(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trace: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", tracePath)
		fmt.Printf("Branches: %d\n", len(branches))
		fmt.Printf("Predictor: %s\n", config.Predictor)
	}

	driverConfig := sim.DefaultConfig()
	if *windowSize > 0 {
		driverConfig.WindowSize = *windowSize
	}

	driver, err := sim.NewDriver(predictor, branches, driverConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating driver: %v\n", err)
		os.Exit(1)
	}

	stats, err := driver.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during replay: %v\n", err)
		os.Exit(1)
	}

	printStats(os.Stdout, config.Predictor, stats, *verbose)
}

// printStats writes the replay report.
func printStats(w io.Writer, kind string, stats sim.Stats, verbose bool) {
	fmt.Fprintf(w, "\nPredictor: %s\n", kind)
	fmt.Fprintf(w, "Branches: %d\n", stats.Branches)
	fmt.Fprintf(w, "Correct: %d\n", stats.Correct)
	fmt.Fprintf(w, "Mispredictions: %d\n", stats.Mispredictions)
	fmt.Fprintf(w, "Accuracy: %.2f%%\n", stats.Accuracy())
	fmt.Fprintf(w, "MPKB: %.2f\n", stats.MPKB())

	if verbose {
		fmt.Fprintf(w, "Max in-flight: %d\n", stats.MaxInFlight)
		fmt.Fprintf(w, "Fetch stalls: %d\n", stats.FetchStalls)
	}
}
