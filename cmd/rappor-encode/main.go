// Command rappor-encode encodes values into RAPPOR reports.
//
// Values are taken from the command line or, if there are none, read from
// standard input one per line. Each value produces one line of output: the
// report as a bit string, most significant bit first.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
	"github.com/wjz0811/rappor"
)

var log = slog.Disabled

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] [value...]"
	args, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, ok := slog.LevelFromString(cfg.DebugLevel)
	if !ok {
		fatalf("invalid debug level %q\n", cfg.DebugLevel)
	}
	backend := slog.NewBackend(os.Stderr)
	log = backend.Logger("RAPR")
	log.SetLevel(level)
	rappor.UseLogger(log)

	if err := run(&cfg, args, nil, os.Stdin, os.Stdout); err != nil {
		fatalf("%v\n", err)
	}
}

// run encodes every value in args, or every line of in when args is empty,
// and writes one report per line to out. IRR masks are drawn from entropy,
// or the default CSPRNG when it is nil.
func run(cfg *config, args []string, entropy io.Reader, in io.Reader, out io.Writer) error {
	secret, err := cfg.secret()
	if err != nil {
		return err
	}
	deps, err := cfg.deps(entropy)
	if err != nil {
		return err
	}
	enc, err := rappor.NewEncoder(cfg.params(), secret, deps)
	if err != nil {
		return err
	}

	log.Debugf("Encoding with k=%d h=%d f=%v p=%v q=%v cohort=%d",
		cfg.NumBits, cfg.NumHashes, cfg.ProbF, cfg.ProbP, cfg.ProbQ, cfg.Cohort)

	w := bufio.NewWriter(out)
	encode := func(value string) error {
		r, err := enc.EncodeDetailed([]byte(value))
		if err != nil {
			return fmt.Errorf("encode %q: %w", value, err)
		}
		if cfg.Detailed {
			_, err = fmt.Fprintf(w, "%s,%s,%s,%s\n", value, r.Bloom.Format(cfg.NumBits),
				r.PRR.Format(cfg.NumBits), r.IRR.Format(cfg.NumBits))
		} else {
			_, err = fmt.Fprintln(w, r.IRR.Format(cfg.NumBits))
		}
		return err
	}

	if len(args) > 0 {
		for _, value := range args {
			if err := encode(value); err != nil {
				return err
			}
		}
		return w.Flush()
	}

	scanner := bufio.NewScanner(in)
	var n int
	for scanner.Scan() {
		if err := encode(scanner.Text()); err != nil {
			return err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read values: %w", err)
	}
	log.Debugf("Encoded %d values", n)
	return w.Flush()
}
