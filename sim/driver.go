// Package sim replays branch traces through a predictor using the Akita
// event-driven simulation engine. Branches are predicted in fetch order but
// resolve after varying latencies, so trainings reach the predictor out of
// program order, the way a speculative out-of-order core would deliver
// them.
package sim

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/nkanderson/cbp2025/bpred"
	"github.com/nkanderson/cbp2025/trace"
)

// Config holds configuration for the replay driver.
type Config struct {
	// WindowSize is the maximum number of in-flight (predicted but
	// unresolved) branches. Fetch stalls when the window is full.
	// Default: 32.
	WindowSize int
	// MinResolveLatency is the minimum number of cycles between a branch's
	// prediction and its resolution. Default: 4.
	MinResolveLatency int
	// MaxResolveLatency is the maximum resolve latency. Latencies are
	// spread deterministically across [min, max] so that resolution order
	// differs from fetch order. Default: 24.
	MaxResolveLatency int
	// Freq is the driver clock frequency. Default: 1 GHz.
	Freq sim.Freq
}

// DefaultConfig returns a default driver configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:        32,
		MinResolveLatency: 4,
		MaxResolveLatency: 24,
		Freq:              1 * sim.GHz,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be > 0")
	}
	if c.MinResolveLatency <= 0 {
		return fmt.Errorf("min resolve latency must be > 0")
	}
	if c.MaxResolveLatency < c.MinResolveLatency {
		return fmt.Errorf("max resolve latency must be >= min resolve latency")
	}
	if c.Freq <= 0 {
		return fmt.Errorf("freq must be > 0")
	}
	return nil
}

// Stats holds replay statistics.
type Stats struct {
	// Branches is the number of branches replayed.
	Branches uint64
	// Correct is the number of correct direction predictions.
	Correct uint64
	// Mispredictions is the number of incorrect direction predictions.
	Mispredictions uint64
	// MaxInFlight is the peak number of simultaneously unresolved
	// branches observed during the replay.
	MaxInFlight int
	// FetchStalls is the number of times fetch was blocked on a full
	// window.
	FetchStalls uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Branches) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Branches) * 100
}

// MPKB returns mispredictions per thousand branches.
func (s Stats) MPKB() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Branches) * 1000
}

// Driver replays a branch trace through one predictor.
type Driver struct {
	predictor bpred.Predictor
	branches  []trace.Branch
	engine    sim.Engine

	freq   sim.Freq
	window int
	minLat int
	maxLat int

	next           int
	inflight       int
	issueScheduled bool
	stats          Stats
	err            error
}

// NewDriver creates a driver that will replay branches through predictor.
// Zero-valued config fields fall back to defaults.
func NewDriver(
	predictor bpred.Predictor,
	branches []trace.Branch,
	config Config,
) (*Driver, error) {
	defaults := DefaultConfig()
	if config.WindowSize == 0 {
		config.WindowSize = defaults.WindowSize
	}
	if config.MinResolveLatency == 0 {
		config.MinResolveLatency = defaults.MinResolveLatency
	}
	if config.MaxResolveLatency == 0 {
		config.MaxResolveLatency = defaults.MaxResolveLatency
	}
	if config.Freq == 0 {
		config.Freq = defaults.Freq
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Driver{
		predictor: predictor,
		branches:  branches,
		engine:    sim.NewSerialEngine(),
		freq:      config.Freq,
		window:    config.WindowSize,
		minLat:    config.MinResolveLatency,
		maxLat:    config.MaxResolveLatency,
	}, nil
}

// issueEvent fetches and predicts the next branch in program order.
type issueEvent struct {
	*sim.EventBase
}

// resolveEvent delivers one branch's resolved outcome to the predictor.
type resolveEvent struct {
	*sim.EventBase

	seqNo   uint64
	branch  trace.Branch
	predDir bool
}

// Run replays the whole trace and returns the collected statistics. It
// drives the predictor through its full lifecycle: Setup, one Predict and
// one Train per branch, then Terminate.
func (d *Driver) Run() (Stats, error) {
	d.predictor.Setup()
	defer d.predictor.Terminate()

	if len(d.branches) > 0 {
		d.scheduleIssue(d.engine.CurrentTime())
	}
	if err := d.engine.Run(); err != nil {
		return d.stats, err
	}
	if d.err != nil {
		return d.stats, d.err
	}

	if d.inflight != 0 {
		return d.stats, fmt.Errorf(
			"replay ended with %d unresolved branches", d.inflight)
	}
	return d.stats, nil
}

// Handle implements sim.Handler. The first error stops all further replay
// work and is surfaced by Run.
func (d *Driver) Handle(e sim.Event) error {
	if d.err != nil {
		return d.err
	}

	switch evt := e.(type) {
	case *issueEvent:
		d.err = d.handleIssue(evt)
	case *resolveEvent:
		d.err = d.handleResolve(evt)
	default:
		d.err = fmt.Errorf("unexpected event type %T", e)
	}
	return d.err
}

func (d *Driver) scheduleIssue(time sim.VTimeInSec) {
	if d.issueScheduled || d.next >= len(d.branches) {
		return
	}
	d.issueScheduled = true
	d.engine.Schedule(&issueEvent{
		EventBase: sim.NewEventBase(time, d),
	})
}

func (d *Driver) handleIssue(evt *issueEvent) error {
	d.issueScheduled = false

	if d.inflight >= d.window {
		// Window full. A resolve event reschedules fetch.
		d.stats.FetchStalls++
		return nil
	}

	branch := d.branches[d.next]
	seqNo := uint64(d.next)
	predDir := d.predictor.Predict(seqNo, 0, branch.PC)

	d.inflight++
	if d.inflight > d.stats.MaxInFlight {
		d.stats.MaxInFlight = d.inflight
	}

	now := evt.Time()
	d.engine.Schedule(&resolveEvent{
		EventBase: sim.NewEventBase(
			d.freq.NCyclesLater(d.resolveLatency(d.next), now), d),
		seqNo:   seqNo,
		branch:  branch,
		predDir: predDir,
	})

	d.next++
	d.scheduleIssue(d.freq.NCyclesLater(1, now))
	return nil
}

func (d *Driver) handleResolve(evt *resolveEvent) error {
	err := d.predictor.Train(evt.seqNo, 0, evt.branch.PC,
		evt.branch.Taken, evt.predDir, evt.branch.NextPC)
	if err != nil {
		return fmt.Errorf("training branch seq %d: %w", evt.seqNo, err)
	}

	d.inflight--
	d.stats.Branches++
	if evt.predDir == evt.branch.Taken {
		d.stats.Correct++
	} else {
		d.stats.Mispredictions++
	}

	d.scheduleIssue(d.freq.NCyclesLater(1, evt.Time()))
	return nil
}

// resolveLatency spreads per-branch latencies across [minLat, maxLat] with
// a stride that is coprime to common window sizes, so consecutive branches
// resolve out of fetch order.
func (d *Driver) resolveLatency(branchIndex int) int {
	span := d.maxLat - d.minLat + 1
	return d.minLat + (branchIndex*7)%span
}
