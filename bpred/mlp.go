package bpred

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// MLPPredictor predicts branch directions with a small pre-trained
// feed-forward network over the global history: one sigmoid hidden layer
// and a sigmoid output neuron thresholded at 0.5. Weights are loaded once
// at construction; the network does not learn online, so Train only feeds
// the resolved outcome into the history register.
type MLPPredictor struct {
	history *HistoryRegister

	historyLen uint32
	hiddenSize int

	// weightsHidden[i][j] connects history bit j to hidden neuron i.
	weightsHidden [][]float64
	biasHidden    []float64
	weightsOutput []float64
	biasOutput    float64
}

// NewMLPPredictor creates an MLP predictor from a weights file.
//
// The file carries one whitespace-separated line of weights per hidden
// neuron (one weight per history bit, then the neuron's bias), and a final
// line for the output neuron (one weight per hidden neuron, then the
// output bias). Blank lines are skipped. The history length and hidden
// layer size are inferred from the file shape.
func NewMLPPredictor(path string) (*MLPPredictor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MLP weights file: %w", err)
	}
	defer file.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		row := make([]float64, len(fields))
		for i, field := range fields {
			row[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"%s:%d: bad weight %q: %w", path, lineNo, field, err)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read MLP weights file: %w", err)
	}

	return newMLPFromRows(path, rows)
}

func newMLPFromRows(path string, rows [][]float64) (*MLPPredictor, error) {
	// The last row is the output neuron; everything before it is the
	// hidden layer.
	if len(rows) < 2 {
		return nil, fmt.Errorf(
			"%s: need at least one hidden neuron and one output neuron", path)
	}
	hiddenSize := len(rows) - 1

	// Each hidden row holds one weight per history bit plus a bias.
	historyLen := len(rows[0]) - 1
	if historyLen < 1 {
		return nil, fmt.Errorf(
			"%s: hidden neuron needs at least 1 input weight and a bias", path)
	}
	if historyLen > 63 {
		return nil, fmt.Errorf(
			"%s: history length %d exceeds 63", path, historyLen)
	}

	p := &MLPPredictor{
		history:       NewHistoryRegister(uint32(historyLen)),
		historyLen:    uint32(historyLen),
		hiddenSize:    hiddenSize,
		weightsHidden: make([][]float64, hiddenSize),
		biasHidden:    make([]float64, hiddenSize),
		weightsOutput: make([]float64, hiddenSize),
	}

	for i := 0; i < hiddenSize; i++ {
		row := rows[i]
		if len(row) != historyLen+1 {
			return nil, fmt.Errorf(
				"%s: hidden neuron %d has %d values, expected %d weights + 1 bias",
				path, i, len(row), historyLen)
		}
		p.weightsHidden[i] = row[:historyLen]
		p.biasHidden[i] = row[historyLen]
	}

	output := rows[hiddenSize]
	if len(output) != hiddenSize+1 {
		return nil, fmt.Errorf(
			"%s: output neuron has %d values, expected %d weights + 1 bias",
			path, len(output), hiddenSize)
	}
	copy(p.weightsOutput, output[:hiddenSize])
	p.biasOutput = output[hiddenSize]

	return p, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Setup implements Predictor. The network was loaded at construction.
func (p *MLPPredictor) Setup() {}

// Terminate implements Predictor.
func (p *MLPPredictor) Terminate() {}

// HistoryLength returns the number of history bits the network consumes.
func (p *MLPPredictor) HistoryLength() uint32 {
	return p.historyLen
}

// HiddenSize returns the number of hidden layer neurons.
func (p *MLPPredictor) HiddenSize() int {
	return p.hiddenSize
}

// Predict implements Predictor. A forward pass over the current global
// history; the branch's own PC does not participate.
func (p *MLPPredictor) Predict(seqNo uint64, piece uint8, pc uint64) bool {
	history := p.history.Value()

	outputSum := p.biasOutput
	for i := 0; i < p.hiddenSize; i++ {
		// History bits are binary, so the MAC degenerates to conditionally
		// adding each weight.
		sum := p.biasHidden[i]
		for j := uint32(0); j < p.historyLen; j++ {
			if (history>>j)&1 == 1 {
				sum += p.weightsHidden[i][j]
			}
		}
		outputSum += sigmoid(sum) * p.weightsOutput[i]
	}

	return sigmoid(outputSum) >= 0.5
}

// Train implements Predictor. The network weights are fixed; only the
// history advances.
func (p *MLPPredictor) Train(seqNo uint64, piece uint8, pc uint64,
	resolveDir, predDir bool, nextPC uint64) error {
	p.history.Advance(resolveDir)
	return nil
}

// HistoryAdvance implements Predictor.
func (p *MLPPredictor) HistoryAdvance(seqNo uint64, piece uint8,
	pc uint64, taken bool, nextPC uint64) {
	p.history.Advance(taken)
}
