package rappor

import (
	"encoding/binary"
	"math/bits"
	"strings"
)

// Bits is a fixed-width bit vector. Bit i of a report is (b >> i) & 1; only
// the low NumBits bits are ever set.
type Bits uint64

// Bit reports whether bit i is set.
func (b Bits) Bit(i int) bool {
	return b&(1<<uint(i)) != 0
}

// OnesCount returns the number of set bits.
func (b Bits) OnesCount() int {
	return bits.OnesCount64(uint64(b))
}

// Format renders the low numBits bits most significant first, so bit 0 is the
// last character.
func (b Bits) Format(numBits int) string {
	var sb strings.Builder
	sb.Grow(numBits)
	for i := numBits - 1; i >= 0; i-- {
		if b.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Bytes returns the low numBits bits as numBits/8 bytes in big-endian order.
// numBits must be a multiple of 8 no larger than MaxBits.
func (b Bits) Bytes(numBits int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b))
	return buf[8-numBits/8:]
}

// mask returns a Bits value with the low numBits bits set.
func mask(numBits int) Bits {
	if numBits >= MaxBits {
		return ^Bits(0)
	}
	return Bits(1)<<uint(numBits) - 1
}
