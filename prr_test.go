package rappor

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

// stubHmac returns an HmacFunc that always yields digest.
func stubHmac(digest [HmacSize]byte) HmacFunc {
	return func(key, msg []byte) [HmacSize]byte {
		return digest
	}
}

func TestPrrMasksThreshold(t *testing.T) {
	tests := []struct {
		name        string
		b           byte
		probF       float64
		wantUniform bool
		wantNoise   bool
	}{
		{"zero byte, f=0", 0x00, 0, false, false},
		{"zero byte, f=0.5", 0x00, 0.5, false, true},
		{"rand128=63, f=0.5", 63<<1 | 1, 0.5, true, true},
		{"rand128=64, f=0.5", 64 << 1, 0.5, false, false},
		{"rand128=127, f=1", 0xFF, 1, true, true},
		{"rand128=127, f=0.99", 0xFF, 0.99, true, false},
		// floor(0.25 * 128) = 32
		{"rand128=31, f=0.25", 31 << 1, 0.25, false, true},
		{"rand128=32, f=0.25", 32 << 1, 0.25, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var digest [HmacSize]byte
			for i := range digest {
				digest[i] = tt.b
			}

			uniform, fMask := prrMasks(digest, tt.probF, 8)
			for i := range 8 {
				if uniform.Bit(i) != tt.wantUniform {
					t.Errorf("uniform bit %d = %v, want %v", i, uniform.Bit(i), tt.wantUniform)
				}
				if fMask.Bit(i) != tt.wantNoise {
					t.Errorf("noise bit %d = %v, want %v", i, fMask.Bit(i), tt.wantNoise)
				}
			}
			if (uniform|fMask)&^mask(8) != 0 {
				t.Errorf("masks %b, %b extend past 8 bits", uint64(uniform), uint64(fMask))
			}
		})
	}
}

func TestPrrMasksPerPosition(t *testing.T) {
	var digest [HmacSize]byte
	digest[0] = 0x01 // uniform, rand128 0
	digest[1] = 0xFE // rand128 127
	digest[2] = 0x81 // uniform, rand128 64
	digest[3] = 0x7E // rand128 63

	uniform, fMask := prrMasks(digest, 0.5, 8)
	if uniform != 0b00000101 {
		t.Errorf("uniform = %08b, want 00000101", uint64(uniform))
	}
	// Positions 4..7 are zero bytes, which are always selected when f > 0.
	if fMask != 0b11111001 {
		t.Errorf("fMask = %08b, want 11111001", uint64(fMask))
	}
}

func TestPermanentResponseKeepsUnselectedBits(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for range 1000 {
		bloom, uniform, fMask := Bits(r.Uint64()), Bits(r.Uint64()), Bits(r.Uint64())
		prr := permanentResponse(bloom, uniform, fMask)

		for i := range MaxBits {
			want := bloom.Bit(i)
			if fMask.Bit(i) {
				want = uniform.Bit(i)
			}
			if prr.Bit(i) != want {
				t.Fatalf("bit %d: prr=%v, want %v (bloom=%x uniform=%x f=%x)", i, prr.Bit(i), want, uint64(bloom), uint64(uniform), uint64(fMask))
			}
		}
	}
}

func TestPRRKnownVector(t *testing.T) {
	e := newTestEncoder(t, Params{NumBits: 16, NumHashes: 2, ProbF: 0.5},
		DefaultDeps(0, &fixedIrrRand{}))

	// HMAC-SHA256("secret", "foo") gives uniform 1110110011110011 and
	// noise mask 1110110111001011 over a bloom filter of bit 6 alone.
	const want = 0b1110110011000011
	if got := e.PRR([]byte("foo")); got != want {
		t.Errorf("PRR = %016b, want %016b", uint64(got), uint64(want))
	}

	for range 10 {
		if got := e.PRR([]byte("foo")); got != want {
			t.Fatalf("PRR not permanent: got %016b", uint64(got))
		}
	}
}

func TestPRRProbFExtremes(t *testing.T) {
	none := newTestEncoder(t, Params{NumBits: 32, NumHashes: 2, ProbF: 0}, DefaultDeps(0, &fixedIrrRand{}))
	all := newTestEncoder(t, Params{NumBits: 32, NumHashes: 2, ProbF: 1}, DefaultDeps(0, &fixedIrrRand{}))

	for i := range 500 {
		value := fmt.Appendf(nil, "value-%d", i)

		if prr, bloom := none.PRR(value), none.MakeBloomFilter(value); prr != bloom {
			t.Fatalf("f=0: PRR %b != bloom %b", uint64(prr), uint64(bloom))
		}

		uniform, _ := prrMasks(HmacSHA256(all.secret, value), 1, 32)
		if prr := all.PRR(value); prr != uniform {
			t.Fatalf("f=1: PRR %b != uniform %b", uint64(prr), uint64(uniform))
		}
	}
}

func TestPRRNoiseRate(t *testing.T) {
	const (
		numBits   = 32
		numValues = 2000
		probF     = 0.5
	)
	secret := []byte("noise-rate")

	var selected int
	for i := range numValues {
		digest := HmacSHA256(secret, fmt.Appendf(nil, "value-%d", i))
		_, fMask := prrMasks(digest, probF, numBits)
		selected += fMask.OnesCount()
	}

	rate := float64(selected) / (numValues * numBits)
	if rate < probF-0.03 || rate > probF+0.03 {
		t.Errorf("noise rate = %.4f, want %.2f +/- 0.03", rate, probF)
	}
	t.Logf("noise rate: %.4f", rate)
}
