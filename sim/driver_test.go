package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nkanderson/cbp2025/bpred"
	"github.com/nkanderson/cbp2025/sim"
	"github.com/nkanderson/cbp2025/trace"
)

// loopTrace models a loop branch: taken streak-1 times, then one fall
// through, repeated.
func loopTrace(pc uint64, streak, iterations int) []trace.Branch {
	var branches []trace.Branch
	for i := 0; i < iterations; i++ {
		for j := 0; j < streak-1; j++ {
			branches = append(branches, trace.Branch{PC: pc, Taken: true, NextPC: pc - 0x40})
		}
		branches = append(branches, trace.Branch{PC: pc, Taken: false, NextPC: pc + 4})
	}
	return branches
}

var _ = Describe("Driver", func() {
	var config sim.Config

	BeforeEach(func() {
		config = sim.DefaultConfig()
		config.WindowSize = 4
	})

	It("should replay an empty trace", func() {
		driver, err := sim.NewDriver(bpred.NewAlwaysTakenPredictor(), nil, config)
		Expect(err).NotTo(HaveOccurred())

		stats, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Branches).To(BeZero())
	})

	It("should account for every branch exactly once", func() {
		branches := loopTrace(0x400100, 8, 20)
		driver, err := sim.NewDriver(bpred.NewBimodalPredictor(
			bpred.BimodalConfig{}), branches, config)
		Expect(err).NotTo(HaveOccurred())

		stats, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Branches).To(Equal(uint64(len(branches))))
		Expect(stats.Correct + stats.Mispredictions).To(Equal(stats.Branches))
	})

	It("should respect the in-flight window bound", func() {
		branches := loopTrace(0x400100, 8, 50)
		driver, err := sim.NewDriver(bpred.NewAlwaysTakenPredictor(), branches, config)
		Expect(err).NotTo(HaveOccurred())

		stats, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.MaxInFlight).To(BeNumerically("<=", config.WindowSize))
		Expect(stats.MaxInFlight).To(BeNumerically(">", 1),
			"resolution latencies should overlap branches")
	})

	It("should score always-taken perfectly on an all-taken trace", func() {
		branches := make([]trace.Branch, 100)
		for i := range branches {
			branches[i] = trace.Branch{PC: 0x100, Taken: true, NextPC: 0x40}
		}

		driver, err := sim.NewDriver(bpred.NewAlwaysTakenPredictor(), branches, config)
		Expect(err).NotTo(HaveOccurred())

		stats, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Mispredictions).To(BeZero())
		Expect(stats.Accuracy()).To(Equal(100.0))
		Expect(stats.MPKB()).To(BeZero())
	})

	It("should replay the perceptron without checkpoint faults", func() {
		// Out-of-order resolution is exactly the case the perceptron's
		// checkpointing has to survive.
		branches := loopTrace(0x400100, 4, 200)
		predictor := bpred.NewPerceptronPredictor(bpred.PerceptronConfig{
			TableSize:     64,
			HistoryLength: 8,
		})

		driver, err := sim.NewDriver(predictor, branches, config)
		Expect(err).NotTo(HaveOccurred())

		stats, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Branches).To(Equal(uint64(len(branches))))
	})

	It("should produce identical stats across identical runs", func() {
		branches := loopTrace(0x400100, 5, 100)

		run := func() sim.Stats {
			predictor := bpred.NewPerceptronPredictor(bpred.PerceptronConfig{
				TableSize:     64,
				HistoryLength: 8,
			})
			driver, err := sim.NewDriver(predictor, branches, config)
			Expect(err).NotTo(HaveOccurred())
			stats, err := driver.Run()
			Expect(err).NotTo(HaveOccurred())
			return stats
		}

		Expect(run()).To(Equal(run()))
	})

	Describe("Configuration", func() {
		It("should reject a max latency below the min", func() {
			config.MinResolveLatency = 10
			config.MaxResolveLatency = 5
			_, err := sim.NewDriver(bpred.NewAlwaysTakenPredictor(), nil, config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a negative window", func() {
			config.WindowSize = -1
			_, err := sim.NewDriver(bpred.NewAlwaysTakenPredictor(), nil, config)
			Expect(err).To(HaveOccurred())
		})

		It("should fill zero fields with defaults", func() {
			driver, err := sim.NewDriver(
				bpred.NewAlwaysTakenPredictor(), nil, sim.Config{})
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
		})
	})
})
