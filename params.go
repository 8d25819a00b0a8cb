package rappor

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxBits is the widest report a Bits value can hold.
	MaxBits = 64
	// MaxPRRBits is the widest report the permanent response can cover.
	// The PRR consumes one keyed digest byte per bit.
	MaxPRRBits = HmacSize
	// MaxHashes is the largest number of Bloom hash functions. Each hash
	// function consumes one byte of the 16-byte digest.
	MaxHashes = DigestSize
)

// ErrInvalidParams is returned when encoding parameters cannot produce a
// well-defined report.
var ErrInvalidParams = errors.New("rappor: invalid encoding parameters")

// Params are the RAPPOR encoding parameters shared by every client that
// reports into the same collection. They are treated as immutable once handed
// to an Encoder.
type Params struct {
	NumBits   int     // Bloom filter width in bits (k)
	NumHashes int     // Bloom hash functions per value (h)
	ProbF     float64 // Permanent response noise probability (f)
}

// IsValid reports whether the bit width fits in Bits and is a multiple of 8.
// Nothing else is checked; NewEncoder applies the stricter Validate.
func (p Params) IsValid() bool {
	return p.NumBits <= MaxBits && p.NumBits%8 == 0
}

// Validate returns an error wrapping ErrInvalidParams when the parameters
// cannot be encoded. Beyond the IsValid width checks it requires a non-empty
// filter that the 32-byte keyed digest can cover, a hash count the 16-byte
// digest can supply, and f in [0, 1].
func (p Params) Validate() error {
	switch {
	case p.NumBits > MaxBits:
		return fmt.Errorf("%w: num_bits (%d) can't be bigger than Bits type (%d)", ErrInvalidParams, p.NumBits, MaxBits)
	case p.NumBits%8 != 0:
		return fmt.Errorf("%w: num_bits (%d) must be a multiple of 8", ErrInvalidParams, p.NumBits)
	case p.NumBits <= 0:
		return fmt.Errorf("%w: num_bits (%d) must be positive", ErrInvalidParams, p.NumBits)
	case p.NumBits > MaxPRRBits:
		return fmt.Errorf("%w: num_bits (%d) exceeds the %d bits the permanent response can cover", ErrInvalidParams, p.NumBits, MaxPRRBits)
	case p.NumHashes < 1 || p.NumHashes > MaxHashes:
		return fmt.Errorf("%w: num_hashes (%d) must be in [1, %d]", ErrInvalidParams, p.NumHashes, MaxHashes)
	case math.IsNaN(p.ProbF) || p.ProbF < 0 || p.ProbF > 1:
		return fmt.Errorf("%w: prob_f (%v) must be in [0, 1]", ErrInvalidParams, p.ProbF)
	}
	return nil
}

// NumBytes returns the report width in bytes.
func (p Params) NumBytes() int {
	return p.NumBits / 8
}

// PermanentEpsilon returns the differential privacy level of the permanent
// response alone, which bounds what any number of reports can reveal about a
// single value.
// Formula: 2h * ln((1 - f/2) / (f/2))
//
// It returns +Inf when f is 0 because the PRR then adds no noise.
func PermanentEpsilon(numHashes int, probF float64) float64 {
	if probF <= 0 {
		return math.Inf(1)
	}
	half := probF / 2
	return 2 * float64(numHashes) * math.Log((1-half)/half)
}

// InstantaneousEpsilon returns the differential privacy level of a single
// report, once both the permanent and the instantaneous responses have been
// applied.
// Formula: h * ln(q* (1 - p*) / (p* (1 - q*)))
// where q* = f(p+q)/2 + (1-f)q and p* = f(p+q)/2 + (1-f)p.
//
// It returns +Inf when a report reveals its true bits with certainty.
func InstantaneousEpsilon(numHashes int, probF, probP, probQ float64) float64 {
	shared := probF * (probP + probQ) / 2
	qStar := shared + (1-probF)*probQ
	pStar := shared + (1-probF)*probP

	denom := pStar * (1 - qStar)
	if denom <= 0 {
		return math.Inf(1)
	}
	return float64(numHashes) * math.Log(qStar*(1-pStar)/denom)
}
