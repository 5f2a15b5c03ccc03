// This program drives a ledger through the payment scenario and provides
// helpers for inspecting the proof of work and digests.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/tooling/demo/commands"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

type config struct {
	conf.Version
	Args   conf.Args
	Ledger struct {
		Difficulty  uint          `conf:"default:4"`
		Scheme      string        `conf:"default:secp256k1"`
		MineTimeout time.Duration `conf:"default:2m"`
	}
}

func main() {

	// Construct the application logger.
	log, err := logger.New("DEMO")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger demo",
		},
	}

	const prefix = "DEMO"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.MineTimeout)
	defer cancel()

	return processCommands(ctx, cfg, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(ctx context.Context, cfg config, log *zap.SugaredLogger) error {
	switch cfg.Args.Num(0) {
	case "", "run":
		ev := func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
		}
		if err := commands.Run(ctx, os.Stdout, cfg.Ledger.Difficulty, cfg.Ledger.Scheme, ev); err != nil {
			return fmt.Errorf("running demo: %w", err)
		}

	case "mine":
		if err := commands.Mine(ctx, os.Stdout, cfg.Args.Num(1), cfg.Ledger.Difficulty); err != nil {
			return fmt.Errorf("mining: %w", err)
		}

	case "hash":
		if err := commands.Hash(os.Stdout, cfg.Args.Num(1)); err != nil {
			return fmt.Errorf("hashing: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q: use run, mine <seed> or hash <text>", cfg.Args.Num(0))
	}

	return nil
}
