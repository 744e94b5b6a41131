// Package main provides the dicetower binary: roll, trace, or analyze a
// dice expression from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kestrelworks/dicetower/internal/config"
	"github.com/kestrelworks/dicetower/internal/dicemath"
	"github.com/kestrelworks/dicetower/internal/macros"
	"github.com/kestrelworks/dicetower/internal/observability"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: dicetower [flags] <mode> <expression>

modes:
  roll     evaluate a single roll and print the total
  verbose  evaluate a roll and print the per-die audit trace
  info     print the deterministic min, max, and exact expected value

flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults")
	seed := flag.Int64("seed", 0, "seed for a reproducible roll sequence; 0 uses crypto/rand")
	useMacro := flag.Bool("macro", false, "treat the argument as a macro name from the macros file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	mode, arg := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	input := arg
	if *useMacro {
		input, err = resolveMacro(cfg, arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Debug("resolved macro", zap.String("name", arg), zap.String("expression", input))
	}

	var src dicemath.Source
	if *seed != 0 {
		src = dicemath.NewSeededSource(*seed)
	} else {
		src = dicemath.NewCryptoSource()
	}
	roller := dicemath.NewRoller(src, dicemath.NewAnalyzer(), logger)

	if err := run(roller, src, cfg, mode, input); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveMacro maps a macro name to its stored expression.
func resolveMacro(cfg config.Config, name string) (string, error) {
	if cfg.Macros.Path == "" {
		return "", fmt.Errorf("no macros file configured; set macros.path")
	}
	lib, err := macros.LoadFile(cfg.Macros.Path)
	if err != nil {
		return "", err
	}
	expr, ok := lib.Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown macro %q; available: %v", name, lib.Names())
	}
	return expr, nil
}

func run(roller *dicemath.Roller, src dicemath.Source, cfg config.Config, mode, input string) error {
	switch mode {
	case "roll":
		total, err := roller.Roll(input)
		if err != nil {
			return err
		}
		fmt.Println(total)
	case "verbose":
		_, trace, err := roller.VerboseRoll(input)
		if err != nil {
			return err
		}
		fmt.Println(trace)
	case "info":
		summary, err := roller.Describe(input)
		if err != nil {
			return err
		}
		fmt.Printf("Low: %d\nHigh: %d\nEV: %.7g\n", summary.Min, summary.Max, summary.EV)
		if cfg.Roll.Trials > 0 {
			observed, err := observedAverage(input, src, cfg.Roll.Trials)
			if err != nil {
				return err
			}
			fmt.Printf("Observed average over %d rolls: %.7g\n", cfg.Roll.Trials, observed)
		}
	default:
		usage()
		os.Exit(2)
	}
	return nil
}

// observedAverage samples the expression trials times and averages the
// totals, as a sanity display next to the analytic EV.
func observedAverage(input string, src dicemath.Source, trials int) (float64, error) {
	e, err := dicemath.Parse(input)
	if err != nil {
		return 0, err
	}
	sum := 0
	for i := 0; i < trials; i++ {
		total, err := e.Roll(src)
		if err != nil {
			return 0, err
		}
		sum += total
	}
	return float64(sum) / float64(trials), nil
}
