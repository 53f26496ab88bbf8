package game

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

const rngAlgorithm = "pcg"

// Stream is the one random source shared by markets and generators.
// Per turn it is consumed in a fixed order: oil step, steel step, tender
// generation, resale generation. Reordering those calls changes every
// subsequent tick, so saves only replay correctly under that order.
type Stream struct {
	src *countingSource
	r   *rand.Rand
}

type countingSource struct {
	pcg   *rand.PCG
	draws uint64
}

func (s *countingSource) Uint64() uint64 {
	s.draws++
	return s.pcg.Uint64()
}

// StreamState is the lossless form of a Stream: algorithm tag, the two PCG
// state words and the number of 64-bit draws taken so far.
type StreamState struct {
	Algorithm string   `json:"algorithm"`
	Words     []uint64 `json:"words"`
	Draws     uint64   `json:"draws"`
}

func NewStream(seed int64) *Stream {
	return newStream(rand.NewPCG(uint64(seed), uint64(seed>>16|7)), 0)
}

func newStream(pcg *rand.PCG, draws uint64) *Stream {
	src := &countingSource{pcg: pcg, draws: draws}
	return &Stream{src: src, r: rand.New(src)}
}

func (s *Stream) State() StreamState {
	// MarshalBinary layout: "pcg:" | hi (big endian) | lo (big endian).
	b, _ := s.src.pcg.MarshalBinary()
	return StreamState{
		Algorithm: rngAlgorithm,
		Words:     []uint64{binary.BigEndian.Uint64(b[4:12]), binary.BigEndian.Uint64(b[12:20])},
		Draws:     s.src.draws,
	}
}

func RestoreStream(st StreamState) (*Stream, error) {
	if st.Algorithm != rngAlgorithm {
		return nil, fmt.Errorf("%w: unsupported rng algorithm %q", ErrCorruptSave, st.Algorithm)
	}
	if len(st.Words) != 2 {
		return nil, fmt.Errorf("%w: rng state needs 2 words, got %d", ErrCorruptSave, len(st.Words))
	}
	b := make([]byte, 0, 20)
	b = append(b, "pcg:"...)
	b = binary.BigEndian.AppendUint64(b, st.Words[0])
	b = binary.BigEndian.AppendUint64(b, st.Words[1])
	pcg := rand.NewPCG(0, 0)
	if err := pcg.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: rng state: %v", ErrCorruptSave, err)
	}
	return newStream(pcg, st.Draws), nil
}

func (s *Stream) Float64() float64 { return s.r.Float64() }

func (s *Stream) IntN(n int) int { return s.r.IntN(n) }

// IntRange returns a uniform integer in [lo, hi].
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

func (s *Stream) Uniform(a, b float64) float64 {
	return a + (b-a)*s.r.Float64()
}

func (s *Stream) Normal(mean, sd float64) float64 {
	return mean + sd*s.r.NormFloat64()
}

func (s *Stream) Bernoulli(p float64) bool {
	return s.r.Float64() < p
}

// Triangular draws from a triangular distribution on [low, high] peaking at mode.
func (s *Stream) Triangular(low, high, mode float64) float64 {
	if high == low {
		return low
	}
	u := s.r.Float64()
	c := (mode - low) / (high - low)
	if u > c {
		u = 1 - u
		c = 1 - c
		low, high = high, low
	}
	return low + (high-low)*math.Sqrt(u*c)
}
