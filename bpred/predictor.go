// Package bpred provides conditional branch direction predictors for the
// simulator. All predictors implement the Predictor interface so the host
// can swap strategies without code changes.
package bpred

import "fmt"

// Predictor is the interface implemented by all conditional branch
// direction predictors.
//
// Per-branch lifecycle: Predict must be called before Train for the same
// (seqNo, piece) identity, and Train consumes that identity. The host owns
// the identities; the predictor owns all internal state.
type Predictor interface {
	// Setup performs one-time initialization. Called once, before the
	// first Predict.
	Setup()

	// Predict returns the predicted direction (true = taken) for the
	// conditional branch at pc. seqNo and piece together identify this
	// in-flight branch instance until it resolves.
	Predict(seqNo uint64, piece uint8, pc uint64) bool

	// Train informs the predictor of the resolved direction of a branch
	// previously presented to Predict, and advances the global history.
	// resolveDir is the actual outcome, predDir the direction Predict
	// returned for this branch. Train may be called out of program order
	// across branches, but exactly once per predicted branch.
	Train(seqNo uint64, piece uint8, pc uint64,
		resolveDir, predDir bool, nextPC uint64) error

	// HistoryAdvance folds the outcome of a branch that was not routed
	// through Predict/Train (e.g. an unconditional branch the host tracks)
	// into the global history.
	HistoryAdvance(seqNo uint64, piece uint8, pc uint64,
		taken bool, nextPC uint64)

	// Terminate releases predictor resources. No further calls are valid
	// afterwards.
	Terminate()
}

// Predictor kind names accepted by New and Config.
const (
	KindAlwaysTaken = "always-taken"
	KindBimodal     = "bimodal"
	KindPerceptron  = "perceptron"
	KindMLP         = "mlp"
)

// New constructs the predictor selected by the configuration.
func New(config *Config) (Predictor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Predictor {
	case KindAlwaysTaken:
		return NewAlwaysTakenPredictor(), nil
	case KindBimodal:
		return NewBimodalPredictor(BimodalConfig{
			TableSize: config.BimodalTableSize,
		}), nil
	case KindPerceptron:
		return NewPerceptronPredictor(PerceptronConfig{
			TableSize:     config.PerceptronTableSize,
			HistoryLength: config.HistoryLength,
		}), nil
	case KindMLP:
		p, err := NewMLPPredictor(config.MLPWeightsFile)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown predictor kind %q", config.Predictor)
	}
}
