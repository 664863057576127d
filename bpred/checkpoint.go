package bpred

import (
	"errors"
	"fmt"
)

// ErrUnknownCheckpoint is returned by Take when no checkpoint is live for
// the requested instruction identity. Seeing it means the host violated the
// predict-before-train contract (train without a prior predict, or the same
// branch trained twice), so callers should treat it as fatal for that
// branch rather than retry.
var ErrUnknownCheckpoint = errors.New("unknown checkpoint")

// InstID packs a fetch sequence number and a sub-instruction piece index
// into the unique identity of one in-flight branch. A fetch group may
// contain several branches, so the piece index disambiguates within a
// sequence number.
func InstID(seqNo uint64, piece uint8) uint64 {
	return (seqNo << 4) | uint64(piece&0x0F)
}

// CheckpointStore maps in-flight branch identities to the global history
// snapshot observed when each branch was predicted. Entries live only
// between a prediction and its training, so the store's size is bounded by
// the number of in-flight branches, not by program length.
type CheckpointStore struct {
	histories map[uint64]uint64
}

// NewCheckpointStore creates an empty checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		histories: make(map[uint64]uint64),
	}
}

// Record inserts or overwrites the history snapshot for id.
func (s *CheckpointStore) Record(id, snapshot uint64) {
	s.histories[id] = snapshot
}

// Take removes and returns the snapshot recorded for id. It fails with
// ErrUnknownCheckpoint if no entry is live for id.
func (s *CheckpointStore) Take(id uint64) (uint64, error) {
	snapshot, ok := s.histories[id]
	if !ok {
		return 0, fmt.Errorf("instruction id 0x%X: %w", id, ErrUnknownCheckpoint)
	}
	delete(s.histories, id)
	return snapshot, nil
}

// Len returns the number of live checkpoints.
func (s *CheckpointStore) Len() int {
	return len(s.histories)
}
