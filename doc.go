// Package rappor implements the client side of RAPPOR, a local differential
// privacy scheme for collecting statistics over string values.
//
// An [Encoder] turns a sensitive value into a noisy fixed-width bit vector
// that can be reported to an aggregator. A single report reveals little about
// the value it came from, but many reports from a population can be decoded
// into the distribution of values.
//
// # Pipeline
//
// Encoding runs three stages in order:
//
// Bloom filter: the value, salted with the client's cohort, is hashed once
// and each of the first h digest bytes selects one of the k report bits. See
// [Encoder.MakeBloomFilter].
//
// Permanent randomized response (PRR): a keyed digest of the value under the
// client secret replaces each Bloom bit with a coin flip with probability f.
// The PRR is deterministic, so reporting the same value again reveals nothing
// new. See [Encoder.PRR].
//
// Instantaneous randomized response (IRR): every report draws two fresh
// masks from an [IrrRand]. Where the PRR bit is 1 the report takes the bit
// from the Q mask, elsewhere from the P mask.
//
// [Encoder.Encode] returns the IRR. [Encoder.EncodeDetailed] also returns the
// Bloom filter and PRR for simulations; those must never be sent.
//
// # Choosing Parameters
//
// [Params] holds k, h and f. Reports are at most 32 bits wide because the PRR
// consumes one byte of the 32-byte keyed digest per bit, and the width must
// be a multiple of 8:
//
//	params := rappor.Params{NumBits: 16, NumHashes: 2, ProbF: 0.5}
//
// p and q belong to the randomness source, see [NewSecureIrrRand].
// [PermanentEpsilon] and [InstantaneousEpsilon] give the resulting privacy
// levels.
//
// # Collaborators
//
// The hashes are injected through [Deps]. [DefaultDeps] selects MD5 and
// HMAC-SHA256, matching the reference clients. [XXH3Digest] and
// [HmacBLAKE256] are alternatives for deployments that control both ends.
//
// # Errors
//
// [NewEncoder] refuses parameters that cannot be encoded, so an Encoder is
// always usable. [Encoder.Encode] fails only when a mask cannot be drawn, and
// then returns no bits at all.
//
// # Thread Safety
//
// An Encoder holds no mutable state. It is safe for concurrent use when its
// collaborators are; the provided hashes and [SecureIrrRand] with the default
// reader are.
//
// # References
//
//   - RAPPOR: https://research.google/pubs/pub42852/
//   - Reference implementation: https://github.com/google/rappor
package rappor
