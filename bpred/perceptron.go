package bpred

import "math"

// PerceptronConfig holds configuration for the perceptron predictor.
type PerceptronConfig struct {
	// TableSize is the number of independently trained weight vectors.
	// Program counters are hashed into this table. Default is 1024.
	TableSize uint32
	// HistoryLength is the number of global history bits used as inputs,
	// in [1, 63]. Default is 62.
	HistoryLength uint32
}

// DefaultPerceptronConfig returns a default configuration.
func DefaultPerceptronConfig() PerceptronConfig {
	return PerceptronConfig{
		TableSize:     1024,
		HistoryLength: 62,
	}
}

// Theta returns the training threshold for the configured history length,
// theta = floor(1.93 * H) + 14, using integer arithmetic. Non-bias weights
// saturate at +/-theta, and a correct prediction whose score magnitude is
// within theta still triggers training.
func (c PerceptronConfig) Theta() int32 {
	return int32(193*c.HistoryLength/100) + 14
}

// PerceptronPredictor predicts branch directions with one linear weight
// vector per hashed PC bucket, scored against a +/-1 encoding of the global
// history.
//
// Because the host may resolve branches out of program order, every
// prediction checkpoints the history register under the branch's identity,
// and training recomputes its score from that snapshot rather than from the
// live register, which may already reflect other, younger resolutions.
type PerceptronPredictor struct {
	// table[i] is the weight vector for bucket i: index 0 is the bias,
	// indices 1..H the per-history-bit weights.
	table [][]int16

	history     *HistoryRegister
	checkpoints *CheckpointStore

	tableSize  uint32
	historyLen uint32
	theta      int32
}

// NewPerceptronPredictor creates a perceptron predictor with the given
// configuration. Zero-valued config fields fall back to defaults.
func NewPerceptronPredictor(config PerceptronConfig) *PerceptronPredictor {
	tableSize := config.TableSize
	historyLen := config.HistoryLength

	if tableSize == 0 {
		tableSize = DefaultPerceptronConfig().TableSize
	}
	if historyLen == 0 {
		historyLen = DefaultPerceptronConfig().HistoryLength
	}

	table := make([][]int16, tableSize)
	for i := range table {
		table[i] = make([]int16, historyLen+1)
	}

	return &PerceptronPredictor{
		table:       table,
		history:     NewHistoryRegister(historyLen),
		checkpoints: NewCheckpointStore(),
		tableSize:   tableSize,
		historyLen:  historyLen,
		theta:       PerceptronConfig{HistoryLength: historyLen}.Theta(),
	}
}

// Setup implements Predictor. All weights already start at zero from
// construction, so there is nothing left to initialize.
func (p *PerceptronPredictor) Setup() {}

// Terminate implements Predictor.
func (p *PerceptronPredictor) Terminate() {
	p.checkpoints = nil
	p.table = nil
}

// tableIndex maps a PC to its weight vector bucket. Collisions alias two
// branches onto one vector; that is an accepted approximation.
func (p *PerceptronPredictor) tableIndex(pc uint64) uint32 {
	return uint32(pc % uint64(p.tableSize))
}

// score computes the weight vector's output against a history snapshot:
// bias plus each weight added when its history bit is taken, subtracted
// when not taken.
func (p *PerceptronPredictor) score(weights []int16, history uint64) int32 {
	output := int32(weights[0])
	for i := uint32(0); i < p.historyLen; i++ {
		if (history>>i)&1 == 1 {
			output += int32(weights[i+1])
		} else {
			output -= int32(weights[i+1])
		}
	}
	return output
}

// Predict implements Predictor. It snapshots the current history under the
// branch's identity and predicts taken iff the score is non-negative.
func (p *PerceptronPredictor) Predict(seqNo uint64, piece uint8, pc uint64) bool {
	snapshot := p.history.Value()
	p.checkpoints.Record(InstID(seqNo, piece), snapshot)

	weights := p.table[p.tableIndex(pc)]
	return p.score(weights, snapshot) >= 0
}

// Train implements Predictor. It consumes the branch's checkpoint, trains
// the weight vector against that prediction-time snapshot if the branch was
// mispredicted or its score magnitude was within theta, and then advances
// the global history with the resolved direction.
func (p *PerceptronPredictor) Train(seqNo uint64, piece uint8, pc uint64,
	resolveDir, predDir bool, nextPC uint64) error {
	snapshot, err := p.checkpoints.Take(InstID(seqNo, piece))
	if err != nil {
		return err
	}

	weights := p.table[p.tableIndex(pc)]
	output := p.score(weights, snapshot)

	mispredicted := predDir != resolveDir
	magnitude := output
	if magnitude < 0 {
		magnitude = -magnitude
	}
	weak := magnitude <= p.theta

	if mispredicted || weak {
		// Bias moves with the outcome, saturating at the int16 range.
		if resolveDir {
			if weights[0] < math.MaxInt16 {
				weights[0]++
			}
		} else {
			if weights[0] > math.MinInt16 {
				weights[0]--
			}
		}

		// Each weight moves toward agreement between its history bit and
		// the outcome, saturating at +/-theta.
		for i := uint32(0); i < p.historyLen; i++ {
			historyBit := (snapshot>>i)&1 == 1
			if resolveDir == historyBit {
				if int32(weights[i+1]) < p.theta {
					weights[i+1]++
				}
			} else {
				if int32(weights[i+1]) > -p.theta {
					weights[i+1]--
				}
			}
		}
	}

	p.history.Advance(resolveDir)
	return nil
}

// HistoryAdvance implements Predictor.
func (p *PerceptronPredictor) HistoryAdvance(seqNo uint64, piece uint8,
	pc uint64, taken bool, nextPC uint64) {
	p.history.Advance(taken)
}

// InFlight returns the number of predicted-but-unresolved branches the
// predictor is currently tracking.
func (p *PerceptronPredictor) InFlight() int {
	return p.checkpoints.Len()
}
