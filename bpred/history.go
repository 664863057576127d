package bpred

// HistoryRegister is a global history register: a bitfield of the most
// recent resolved branch outcomes, with the most recent outcome in bit 0
// (1 = taken). Only the low Length bits are ever significant.
type HistoryRegister struct {
	bits   uint64
	length uint32
	mask   uint64
}

// NewHistoryRegister creates a history register holding the last length
// branch outcomes. length must be in [1, 63].
func NewHistoryRegister(length uint32) *HistoryRegister {
	if length == 0 || length > 63 {
		panic("bpred: history length must be in [1, 63]")
	}
	return &HistoryRegister{
		length: length,
		mask:   (uint64(1) << length) - 1,
	}
}

// Advance shifts the register left by one bit, records the new outcome in
// bit 0, and masks back down to the low Length bits. This is the only
// mutation path; it runs exactly once per resolved branch, after training
// has read the pre-advance value.
func (h *HistoryRegister) Advance(taken bool) {
	h.bits <<= 1
	if taken {
		h.bits |= 1
	}
	h.bits &= h.mask
}

// Value returns the current history bits. The result is a pure value and
// doubles as the snapshot stored in the checkpoint store.
func (h *HistoryRegister) Value() uint64 {
	return h.bits
}

// Length returns the number of significant history bits.
func (h *HistoryRegister) Length() uint32 {
	return h.length
}
