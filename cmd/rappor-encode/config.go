package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/decred/dcrd/crypto/rand"
	"github.com/wjz0811/rappor"
)

// generatedSecretSize is the size of the secret generated when none is given.
const generatedSecretSize = 16

type config struct {
	NumBits    int     `short:"k" long:"num-bits" description:"Bloom filter width in bits (multiple of 8, at most 32)"`
	NumHashes  int     `long:"num-hashes" description:"number of Bloom hash functions (1-16)"`
	ProbF      float64 `short:"f" long:"prob-f" description:"permanent response noise probability"`
	ProbP      float64 `short:"p" long:"prob-p" description:"probability a reported bit is 1 when the PRR bit is 0"`
	ProbQ      float64 `short:"q" long:"prob-q" description:"probability a reported bit is 1 when the PRR bit is 1"`
	Cohort     uint32  `short:"c" long:"cohort" description:"cohort the client hashes into"`
	Secret     string  `short:"s" long:"secret" description:"client secret keying the permanent response"`
	SecretFile string  `long:"secret-file" description:"read the client secret from a file"`
	Digest     string  `long:"digest" choice:"md5" choice:"xxh3" description:"Bloom filter hash"`
	Hmac       string  `long:"hmac" choice:"sha256" choice:"blake256" description:"permanent response keyed hash"`
	Detailed   bool    `short:"d" long:"detailed" description:"print value,bloom,prr,irr instead of the report alone"`
	DebugLevel string  `long:"debuglevel" description:"logging level {trace, debug, info, warn, error, critical, off}"`
}

// defaultConfig returns the parameters of the reference RAPPOR demo.
func defaultConfig() config {
	return config{
		NumBits:    16,
		NumHashes:  2,
		ProbF:      0.5,
		ProbP:      0.5,
		ProbQ:      0.75,
		Digest:     "md5",
		Hmac:       "sha256",
		DebugLevel: "info",
	}
}

func (cfg *config) params() rappor.Params {
	return rappor.Params{
		NumBits:   cfg.NumBits,
		NumHashes: cfg.NumHashes,
		ProbF:     cfg.ProbF,
	}
}

// deps returns the collaborators selected by cfg, drawing IRR masks from
// entropy. A nil entropy reader selects the default CSPRNG.
func (cfg *config) deps(entropy io.Reader) (rappor.Deps, error) {
	irrRand, err := rappor.NewSecureIrrRand(rappor.IrrRandConfig{
		NumBits: cfg.NumBits,
		ProbP:   cfg.ProbP,
		ProbQ:   cfg.ProbQ,
		Reader:  entropy,
	})
	if err != nil {
		return rappor.Deps{}, err
	}

	deps := rappor.DefaultDeps(cfg.Cohort, irrRand)
	switch cfg.Digest {
	case "md5":
	case "xxh3":
		deps.Digest = rappor.XXH3Digest
	default:
		return rappor.Deps{}, fmt.Errorf("unknown digest %q", cfg.Digest)
	}
	switch cfg.Hmac {
	case "sha256":
	case "blake256":
		deps.Hmac = rappor.HmacBLAKE256
	default:
		return rappor.Deps{}, fmt.Errorf("unknown hmac %q", cfg.Hmac)
	}
	return deps, nil
}

// secret returns the configured client secret. When none is configured a
// random one is generated, and the PRR is then only permanent for this run.
func (cfg *config) secret() ([]byte, error) {
	switch {
	case cfg.Secret != "" && cfg.SecretFile != "":
		return nil, errors.New("--secret and --secret-file are mutually exclusive")
	case cfg.Secret != "":
		return []byte(cfg.Secret), nil
	case cfg.SecretFile != "":
		b, err := os.ReadFile(cfg.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		b = bytes.TrimRight(b, "\r\n")
		if len(b) == 0 {
			return nil, fmt.Errorf("secret file %s is empty", cfg.SecretFile)
		}
		return b, nil
	}

	log.Warnf("No client secret given; generating a %d byte secret for this run only", generatedSecretSize)
	b := make([]byte, generatedSecretSize)
	rand.Read(b)
	return b, nil
}
