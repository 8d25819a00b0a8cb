package rappor

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/decred/dcrd/crypto/rand"
)

var (
	// ErrRandomnessUnavailable is returned when an IRR mask could not be
	// generated. No report is produced.
	ErrRandomnessUnavailable = errors.New("rappor: randomness unavailable")

	// ErrInvalidProbability is returned when an IRR probability is outside
	// [0, 1].
	ErrInvalidProbability = errors.New("rappor: invalid probability")
)

// IrrRand supplies the random masks of the instantaneous response. Each bit
// of a P mask is set with probability p and each bit of a Q mask with
// probability q. Implementations must be safe for concurrent use if the
// Encoder using them is.
type IrrRand interface {
	// PMask returns the bits reported where the PRR bit is 0.
	PMask() (Bits, error)
	// QMask returns the bits reported where the PRR bit is 1.
	QMask() (Bits, error)
}

// instantaneousResponse reports bit i of q where the PRR bit is set and bit i
// of p where it is clear.
func instantaneousResponse(prr, p, q Bits) Bits {
	return (p &^ prr) | (q & prr)
}

// instantaneous draws fresh masks and applies the instantaneous response to
// prr. Masks are drawn P first; a failed P draw never consults Q.
func (e *Encoder) instantaneous(prr Bits) (Bits, error) {
	p, err := e.irrRand.PMask()
	if err != nil {
		return 0, maskError("p", err)
	}
	q, err := e.irrRand.QMask()
	if err != nil {
		return 0, maskError("q", err)
	}
	return instantaneousResponse(prr, p&e.mask, q&e.mask), nil
}

// maskError wraps a mask failure so that it always matches
// ErrRandomnessUnavailable.
func maskError(which string, err error) error {
	if errors.Is(err, ErrRandomnessUnavailable) {
		return fmt.Errorf("%s mask: %w", which, err)
	}
	return fmt.Errorf("%w: %s mask: %w", ErrRandomnessUnavailable, which, err)
}

// IrrRandConfig configures a SecureIrrRand.
type IrrRandConfig struct {
	NumBits int     // Mask width, equal to the encoder's NumBits
	ProbP   float64 // Probability a P mask bit is set
	ProbQ   float64 // Probability a Q mask bit is set

	// Reader is the entropy source. If nil, the dcrd userspace CSPRNG is
	// used, which is safe for concurrent access. Other readers must be
	// safe for concurrent access if masks are drawn concurrently.
	Reader io.Reader
}

// SecureIrrRand is an IrrRand backed by a cryptographically secure byte
// stream. Each mask bit consumes one byte, which sets the bit when it falls
// below floor(prob * 256).
type SecureIrrRand struct {
	numBits    int
	thresholdP uint16
	thresholdQ uint16
	reader     io.Reader
}

// NewSecureIrrRand returns an IrrRand drawing masks from cfg.Reader.
func NewSecureIrrRand(cfg IrrRandConfig) (*SecureIrrRand, error) {
	if cfg.NumBits <= 0 || cfg.NumBits > MaxBits {
		return nil, fmt.Errorf("%w: num_bits (%d) must be in [1, %d]", ErrInvalidParams, cfg.NumBits, MaxBits)
	}
	thresholdP, err := threshold256(cfg.ProbP)
	if err != nil {
		return nil, fmt.Errorf("prob_p: %w", err)
	}
	thresholdQ, err := threshold256(cfg.ProbQ)
	if err != nil {
		return nil, fmt.Errorf("prob_q: %w", err)
	}

	reader := cfg.Reader
	if reader == nil {
		reader = rand.Reader()
	}

	return &SecureIrrRand{
		numBits:    cfg.NumBits,
		thresholdP: thresholdP,
		thresholdQ: thresholdQ,
		reader:     reader,
	}, nil
}

// threshold256 scales prob to a byte threshold. It is 16 bits wide so that a
// probability of 1 sets every bit.
func threshold256(prob float64) (uint16, error) {
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return 0, fmt.Errorf("%w: %v is not in [0, 1]", ErrInvalidProbability, prob)
	}
	return uint16(prob * 256), nil
}

// PMask returns a mask whose bits are each set with probability p.
func (r *SecureIrrRand) PMask() (Bits, error) {
	return r.randomBits(r.thresholdP)
}

// QMask returns a mask whose bits are each set with probability q.
func (r *SecureIrrRand) QMask() (Bits, error) {
	return r.randomBits(r.thresholdQ)
}

func (r *SecureIrrRand) randomBits(threshold uint16) (Bits, error) {
	var buf [MaxBits]byte
	b := buf[:r.numBits]
	if _, err := io.ReadFull(r.reader, b); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRandomnessUnavailable, err)
	}

	var out Bits
	for i, v := range b {
		if uint16(v) < threshold {
			out |= 1 << uint(i)
		}
	}
	return out, nil
}
