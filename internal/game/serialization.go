package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// serializationVersion is bumped whenever State changes shape.
const serializationVersion = 1

// SerializationChecksum is a deterministic digest of a game snapshot. Two
// peers holding the same state compute the same hash.
type SerializationChecksum struct {
	Hash    string
	Version int
}

// ComputeChecksum hashes the canonical encoding of the snapshot. Map keys are
// emitted in sorted order, so the encoding does not depend on iteration order.
func (s *State) ComputeChecksum() (*SerializationChecksum, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return &SerializationChecksum{
		Hash:    hex.EncodeToString(sum[:]),
		Version: serializationVersion,
	}, nil
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (s *State) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Version == expected.Version && computed.Hash == expected.Hash, nil
}

// SerializeToBytes encodes the snapshot for the wire and for storage.
func (s *State) SerializeToBytes() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DeserializeFromBytes decodes a snapshot produced by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &st, nil
}

// ValidateSerializationRoundtrip checks that a snapshot survives encoding
// without losing anything the checksum covers.
func ValidateSerializationRoundtrip(s *State) error {
	original, err := s.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	ok, err := decoded.VerifyChecksum(original)
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}
	if !ok {
		return fmt.Errorf("checksum mismatch after roundtrip: original=%s", original.Hash)
	}
	return nil
}

// Checksum is the SHA-256 of the full, unredacted game state.
func (g *Game) Checksum() string {
	st := g.ToDict()
	sum, err := st.ComputeChecksum()
	if err != nil {
		g.logger.Error("checksum failed")
		return ""
	}
	return sum.Hash
}
