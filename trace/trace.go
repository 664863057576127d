// Package trace loads conditional branch traces for the prediction
// simulator.
//
// A trace is a text file with one resolved branch per line:
//
//	<pc> <direction> <next pc>
//
// Addresses accept any base strconv.ParseUint understands with base 0
// (0x1234, 0o17, plain decimal). Direction is T/N or 1/0. Blank lines and
// lines starting with '#' are skipped.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Branch is one resolved conditional branch in fetch order.
type Branch struct {
	// PC is the address of the branch instruction.
	PC uint64
	// Taken is the resolved direction.
	Taken bool
	// NextPC is the address executed after the branch resolves.
	NextPC uint64
}

// Load reads a branch trace from a file.
func Load(path string) ([]Branch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()

	branches, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return branches, nil
}

// Parse reads a branch trace from r.
func Parse(r io.Reader) ([]Branch, error) {
	var branches []Branch

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf(
				"line %d: expected 'pc direction next_pc', got %d fields",
				lineNo, len(fields))
		}

		pc, err := strconv.ParseUint(fields[0], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad pc %q: %w", lineNo, fields[0], err)
		}

		taken, err := parseDirection(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		nextPC, err := strconv.ParseUint(fields[2], 0, 64)
		if err != nil {
			return nil, fmt.Errorf(
				"line %d: bad next pc %q: %w", lineNo, fields[2], err)
		}

		branches = append(branches, Branch{PC: pc, Taken: taken, NextPC: nextPC})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return branches, nil
}

func parseDirection(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "T", "1":
		return true, nil
	case "N", "0":
		return false, nil
	default:
		return false, fmt.Errorf("bad direction %q (want T/N or 1/0)", s)
	}
}
