package rappor

// PRR returns the permanent randomized response for value: its Bloom filter
// with a stable, secret-keyed fraction f of the bits replaced by coin flips.
//
// The PRR is a deterministic function of the value, secret, cohort and
// parameters. It must never leave the client; only reports derived from it
// through the instantaneous response may.
func (e *Encoder) PRR(value []byte) Bits {
	bloom := e.MakeBloomFilter(value)
	return e.permanent(value, bloom)
}

// permanent applies the permanent response to bloom, keyed on msg.
func (e *Encoder) permanent(msg []byte, bloom Bits) Bits {
	digest := e.hmac(e.secret, msg)
	log.Tracef("PRR digest: %x", digest)

	uniform, fMask := prrMasks(digest, e.params.ProbF, e.params.NumBits)
	return permanentResponse(bloom, uniform, fMask)
}

// prrMasks derives the uniform and noise-selector masks from the keyed
// digest, one digest byte per bit. The low bit of byte i is the coin flip for
// bit i. The remaining 7 bits select bit i for substitution when they fall
// below floor(f * 128), which happens with probability close to f.
//
// numBits must not exceed HmacSize.
func prrMasks(digest [HmacSize]byte, probF float64, numBits int) (uniform, fMask Bits) {
	threshold128 := uint8(probF * 128)

	for i := range numBits {
		b := digest[i]

		uBit := Bits(b & 0x01)
		uniform |= uBit << uint(i)

		rand128 := b >> 1
		if rand128 < threshold128 {
			fMask |= 1 << uint(i)
		}
	}
	return uniform, fMask
}

// permanentResponse keeps the Bloom bits outside fMask and substitutes the
// uniform bits inside it.
func permanentResponse(bloom, uniform, fMask Bits) Bits {
	return (bloom &^ fMask) | (uniform & fMask)
}
