package rappor

import "fmt"

// Deps are the collaborators an Encoder delegates hashing and randomness to.
type Deps struct {
	Cohort  uint32     // Hash salt group; only the low byte is used
	Digest  DigestFunc // Bloom stage hash
	Hmac    HmacFunc   // PRR stage keyed hash
	IrrRand IrrRand    // IRR stage masks
}

// DefaultDeps returns the collaborators of the reference clients: MD5 for
// the Bloom filter and HMAC-SHA256 for the PRR.
func DefaultDeps(cohort uint32, irrRand IrrRand) Deps {
	return Deps{
		Cohort:  cohort,
		Digest:  MD5Digest,
		Hmac:    HmacSHA256,
		IrrRand: irrRand,
	}
}

// Report holds every stage of an encoding. Only IRR may be sent to an
// aggregator; Bloom and PRR are for simulation and debugging.
type Report struct {
	Bloom Bits
	PRR   Bits
	IRR   Bits
}

// Encoder turns values into RAPPOR reports.
//
// An Encoder is immutable after construction and is safe for concurrent use
// as long as its Deps are.
type Encoder struct {
	params  Params
	cohort  uint32
	secret  []byte
	digest  DigestFunc
	hmac    HmacFunc
	irrRand IrrRand
	mask    Bits // low NumBits bits set
}

// NewEncoder returns an Encoder for params keyed on the client secret. The
// secret must stay the same across reports from one client or the PRR stops
// being permanent.
//
// It returns an error wrapping ErrInvalidParams if params fail Validate or a
// collaborator is missing.
func NewEncoder(params Params, secret []byte, deps Deps) (*Encoder, error) {
	if err := params.Validate(); err != nil {
		log.Debugf("Rejected encoder parameters: %v", err)
		return nil, err
	}
	if deps.Digest == nil || deps.Hmac == nil || deps.IrrRand == nil {
		return nil, fmt.Errorf("%w: digest, hmac and irr rand are all required", ErrInvalidParams)
	}

	return &Encoder{
		params:  params,
		cohort:  deps.Cohort,
		secret:  append([]byte(nil), secret...),
		digest:  deps.Digest,
		hmac:    deps.Hmac,
		irrRand: deps.IrrRand,
		mask:    mask(params.NumBits),
	}, nil
}

// Params returns the encoding parameters.
func (e *Encoder) Params() Params {
	return e.params
}

// Cohort returns the cohort the encoder hashes into.
func (e *Encoder) Cohort() uint32 {
	return e.cohort
}

// Encode returns the report for value. It fails, returning no bits, only if
// the IrrRand cannot produce a mask; the error then wraps
// ErrRandomnessUnavailable. Encode does not retry.
func (e *Encoder) Encode(value []byte) (Bits, error) {
	r, err := e.EncodeDetailed(value)
	if err != nil {
		return 0, err
	}
	return r.IRR, nil
}

// EncodeString is Encode for a string value.
func (e *Encoder) EncodeString(value string) (Bits, error) {
	return e.Encode([]byte(value))
}

// EncodeDetailed is Encode, also returning the Bloom filter and PRR the report
// was derived from. On failure the returned Report is empty.
func (e *Encoder) EncodeDetailed(value []byte) (Report, error) {
	log.Tracef("Encode %q cohort %d", value, e.cohort)

	bloom := e.MakeBloomFilter(value)
	prr := e.permanent(value, bloom)
	irr, err := e.instantaneous(prr)
	if err != nil {
		return Report{}, err
	}
	return Report{Bloom: bloom, PRR: prr, IRR: irr}, nil
}

// EncodeBits reports bits the caller has already computed, skipping the Bloom
// stage. The PRR is keyed on the big-endian NumBits/8 byte form of bits.
//
// It returns an error wrapping ErrInvalidParams if bits has any bit set at or
// above NumBits.
func (e *Encoder) EncodeBits(bits Bits) (Bits, error) {
	r, err := e.EncodeBitsDetailed(bits)
	if err != nil {
		return 0, err
	}
	return r.IRR, nil
}

// EncodeBitsDetailed is EncodeBits, also returning the PRR. Report.Bloom is
// the input bits.
func (e *Encoder) EncodeBitsDetailed(bits Bits) (Report, error) {
	if bits&^e.mask != 0 {
		return Report{}, fmt.Errorf("%w: bits %#x exceed num_bits (%d)", ErrInvalidParams, uint64(bits), e.params.NumBits)
	}
	log.Tracef("Encode bits %0*b cohort %d", e.params.NumBits, uint64(bits), e.cohort)

	prr := e.permanent(bits.Bytes(e.params.NumBits), bits)
	irr, err := e.instantaneous(prr)
	if err != nil {
		return Report{}, err
	}
	return Report{Bloom: bits, PRR: prr, IRR: irr}, nil
}
