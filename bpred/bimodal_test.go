package bpred_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nkanderson/cbp2025/bpred"
)

var _ = Describe("BimodalPredictor", func() {
	var p *bpred.BimodalPredictor

	BeforeEach(func() {
		p = bpred.NewBimodalPredictor(bpred.BimodalConfig{TableSize: 16})
		p.Setup()
	})

	It("should initially predict not taken", func() {
		Expect(p.Predict(1, 0, 0x100)).To(BeFalse())
	})

	It("should learn a taken branch", func() {
		pc := uint64(0x100)
		for seq := uint64(0); seq < 4; seq++ {
			Expect(p.Train(seq, 0, pc, true, false, 0)).To(Succeed())
		}
		Expect(p.Predict(10, 0, pc)).To(BeTrue())
	})

	It("should require two contrary outcomes to change direction", func() {
		pc := uint64(0x100)

		// Saturate at strongly taken.
		for seq := uint64(0); seq < 3; seq++ {
			Expect(p.Train(seq, 0, pc, true, false, 0)).To(Succeed())
		}

		Expect(p.Train(3, 0, pc, false, true, 0)).To(Succeed())
		Expect(p.Predict(4, 0, pc)).To(BeTrue())

		Expect(p.Train(5, 0, pc, false, true, 0)).To(Succeed())
		Expect(p.Predict(6, 0, pc)).To(BeFalse())
	})

	It("should keep per-PC counters independent", func() {
		for seq := uint64(0); seq < 4; seq++ {
			Expect(p.Train(seq, 0, 0x1, true, false, 0)).To(Succeed())
		}
		Expect(p.Predict(10, 0, 0x1)).To(BeTrue())
		Expect(p.Predict(11, 0, 0x2)).To(BeFalse())
	})

	It("should alias PCs that share a table slot", func() {
		// 0x3 and 0x13 collide in a 16-entry table.
		for seq := uint64(0); seq < 4; seq++ {
			Expect(p.Train(seq, 0, 0x3, true, false, 0)).To(Succeed())
		}
		Expect(p.Predict(10, 0, 0x13)).To(BeTrue())
	})
})

var _ = Describe("AlwaysTakenPredictor", func() {
	var p *bpred.AlwaysTakenPredictor

	BeforeEach(func() {
		p = bpred.NewAlwaysTakenPredictor()
		p.Setup()
	})

	It("should predict taken regardless of outcomes", func() {
		pc := uint64(0x100)
		for seq := uint64(0); seq < 10; seq++ {
			Expect(p.Predict(seq, 0, pc)).To(BeTrue())
			Expect(p.Train(seq, 0, pc, false, true, 0)).To(Succeed())
		}
		Expect(p.Predict(100, 0, pc)).To(BeTrue())
	})
})
