package bpred

// BimodalConfig holds configuration for the bimodal predictor.
type BimodalConfig struct {
	// TableSize is the number of 2-bit counters. Must be a power of 2.
	// Default is 4096.
	TableSize uint32
}

// DefaultBimodalConfig returns a default configuration.
func DefaultBimodalConfig() BimodalConfig {
	return BimodalConfig{
		TableSize: 4096,
	}
}

// BimodalPredictor predicts with a table of 2-bit saturating counters
// indexed by the low bits of the PC. Counter states: 0 = strongly not
// taken, 1 = weakly not taken, 2 = weakly taken, 3 = strongly taken.
// It keeps no global history and no per-branch state, so Train needs no
// checkpoint.
type BimodalPredictor struct {
	counters  []uint8
	indexMask uint64
}

// NewBimodalPredictor creates a bimodal predictor with the given
// configuration. A zero table size falls back to the default.
func NewBimodalPredictor(config BimodalConfig) *BimodalPredictor {
	tableSize := config.TableSize
	if tableSize == 0 {
		tableSize = DefaultBimodalConfig().TableSize
	}

	return &BimodalPredictor{
		counters:  make([]uint8, tableSize),
		indexMask: uint64(tableSize - 1),
	}
}

// Setup implements Predictor.
func (p *BimodalPredictor) Setup() {}

// Terminate implements Predictor.
func (p *BimodalPredictor) Terminate() {}

func (p *BimodalPredictor) index(pc uint64) uint64 {
	return pc & p.indexMask
}

// Predict implements Predictor. Taken iff the counter is in a taken state.
func (p *BimodalPredictor) Predict(seqNo uint64, piece uint8, pc uint64) bool {
	return p.counters[p.index(pc)] > 1
}

// Train implements Predictor. The counter saturates up on taken and down
// on not taken.
func (p *BimodalPredictor) Train(seqNo uint64, piece uint8, pc uint64,
	resolveDir, predDir bool, nextPC uint64) error {
	idx := p.index(pc)
	if resolveDir {
		if p.counters[idx] < 3 {
			p.counters[idx]++
		}
	} else {
		if p.counters[idx] > 0 {
			p.counters[idx]--
		}
	}
	return nil
}

// HistoryAdvance implements Predictor. The bimodal predictor keeps no
// history.
func (p *BimodalPredictor) HistoryAdvance(seqNo uint64, piece uint8,
	pc uint64, taken bool, nextPC uint64) {
}
