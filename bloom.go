package rappor

// MakeBloomFilter deterministically maps value into a Bloom filter for the
// encoder's cohort.
//
// The cohort-prefixed value is hashed once and byte i of the digest selects
// the bit for hash function i, modulo the filter width. Two hash functions
// may select the same bit, in which case fewer than NumHashes bits are set.
func (e *Encoder) MakeBloomFilter(value []byte) Bits {
	digest := e.digest(bloomInput(e.cohort, value))
	log.Tracef("Bloom digest for cohort %d: %x", e.cohort, digest)

	return bloomBits(digest, e.params.NumHashes, e.params.NumBits)
}

// MakeBloomFilterString is MakeBloomFilter for a string value.
func (e *Encoder) MakeBloomFilterString(value string) Bits {
	return e.MakeBloomFilter([]byte(value))
}

// bloomBits sets one bit per hash function using the leading digest bytes.
// numHashes must not exceed DigestSize and numBits must be positive.
func bloomBits(digest [DigestSize]byte, numHashes, numBits int) Bits {
	var bloom Bits
	for i := range numHashes {
		bitPos := uint(digest[i]) % uint(numBits)
		bloom |= 1 << bitPos
	}
	return bloom
}
