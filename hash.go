package rappor

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/decred/dcrd/crypto/blake256"
	"github.com/zeebo/xxh3"
)

const (
	// DigestSize is the size of the deterministic Bloom digest in bytes.
	DigestSize = 16
	// HmacSize is the size of the keyed PRR digest in bytes.
	HmacSize = 32
	// cohortPrefixSize is the size of the big-endian cohort prefix that salts
	// every Bloom hash input.
	cohortPrefixSize = 4
)

// DigestFunc is a deterministic hash producing the digest the Bloom stage
// draws its bit positions from. It must be safe for concurrent use.
type DigestFunc func(data []byte) [DigestSize]byte

// HmacFunc is a keyed hash producing the digest the permanent response draws
// its noise from. It must be safe for concurrent use.
type HmacFunc func(key, msg []byte) [HmacSize]byte

// MD5Digest is the DigestFunc the RAPPOR decoders expect.
func MD5Digest(data []byte) [DigestSize]byte {
	return md5.Sum(data)
}

// XXH3Digest derives the digest from the 128-bit xxh3 hash. It is much
// faster than MD5 but the aggregator must hash candidates the same way.
func XXH3Digest(data []byte) [DigestSize]byte {
	return xxh3.Hash128(data).Bytes()
}

// HmacSHA256 is the HmacFunc of the reference RAPPOR clients.
func HmacSHA256(key, msg []byte) [HmacSize]byte {
	return sumHmac(sha256.New, key, msg)
}

// HmacBLAKE256 is HMAC over BLAKE-256. The aggregator never recomputes the
// PRR, so clients may switch to it without changing the decoder.
func HmacBLAKE256(key, msg []byte) [HmacSize]byte {
	return sumHmac(blake256.New, key, msg)
}

// sumHmac computes HMAC over a hash with a 32-byte output.
func sumHmac(h func() hash.Hash, key, msg []byte) [HmacSize]byte {
	mac := hmac.New(h, key)
	mac.Write(msg)

	var out [HmacSize]byte
	mac.Sum(out[:0])
	return out
}

// bloomInput returns the Bloom hash input for value: the cohort as 4 bytes
// big-endian, followed by the value itself. Only the low byte of the cohort
// is kept, so the prefix is always [0 0 0 cohort].
func bloomInput(cohort uint32, value []byte) []byte {
	input := make([]byte, cohortPrefixSize+len(value))
	binary.BigEndian.PutUint32(input, cohort&0xFF)
	copy(input[cohortPrefixSize:], value)
	return input
}
