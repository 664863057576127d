package bpred

// AlwaysTakenPredictor is the trivial baseline: every conditional branch is
// predicted taken. It still tracks global history so it exercises the same
// host protocol as the learning predictors.
type AlwaysTakenPredictor struct {
	history *HistoryRegister
}

// NewAlwaysTakenPredictor creates an always-taken predictor.
func NewAlwaysTakenPredictor() *AlwaysTakenPredictor {
	return &AlwaysTakenPredictor{
		history: NewHistoryRegister(DefaultPerceptronConfig().HistoryLength),
	}
}

// Setup implements Predictor.
func (p *AlwaysTakenPredictor) Setup() {}

// Terminate implements Predictor.
func (p *AlwaysTakenPredictor) Terminate() {}

// Predict implements Predictor. The answer is always taken.
func (p *AlwaysTakenPredictor) Predict(seqNo uint64, piece uint8, pc uint64) bool {
	return true
}

// Train implements Predictor. There is nothing to learn, but the resolved
// outcome still enters the history register.
func (p *AlwaysTakenPredictor) Train(seqNo uint64, piece uint8, pc uint64,
	resolveDir, predDir bool, nextPC uint64) error {
	p.history.Advance(resolveDir)
	return nil
}

// HistoryAdvance implements Predictor.
func (p *AlwaysTakenPredictor) HistoryAdvance(seqNo uint64, piece uint8,
	pc uint64, taken bool, nextPC uint64) {
	p.history.Advance(taken)
}
