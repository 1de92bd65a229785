package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/palletchain/internal/metrics"
	"github.com/goodnatureofminers/palletchain/internal/pallet/powpos"
	"github.com/goodnatureofminers/palletchain/internal/runtime"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/internal/simulate"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Runs               int           `long:"runs" env:"PALLETCHAIN_SIM_RUNS" description:"independent runtimes to simulate" default:"16"`
	BlocksPerRun       int           `long:"blocks" env:"PALLETCHAIN_SIM_BLOCKS" description:"blocks executed per runtime" default:"200"`
	ExtrinsicsPerBlock int           `long:"extrinsics" env:"PALLETCHAIN_SIM_EXTRINSICS" description:"extrinsics per block" default:"8"`
	Accounts           int           `long:"accounts" env:"PALLETCHAIN_SIM_ACCOUNTS" description:"accounts per runtime" default:"5"`
	Workers            int           `long:"workers" env:"PALLETCHAIN_SIM_WORKERS" description:"runtimes simulated in parallel" default:"4"`
	Seed               uint64        `long:"seed" env:"PALLETCHAIN_SIM_SEED" description:"seed of the first run" default:"1"`
	WorkThreshold      uint64        `long:"work-threshold" env:"PALLETCHAIN_WORK_THRESHOLD" description:"proof of work must be strictly below this value" default:"10000"`
	StakeThreshold     model.Balance `long:"stake-threshold" env:"PALLETCHAIN_STAKE_THRESHOLD" description:"minimum stake of a block miner" default:"50"`
	Chain              string        `long:"chain" env:"PALLETCHAIN_CHAIN" description:"chain label attached to metrics" default:"sim"`
	MetricsAddr        string        `long:"metrics-addr" env:"PALLETCHAIN_METRICS_ADDR" description:"address for metrics server"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, cfg.MetricsAddr, logger.Named("metrics"))
	}

	sim, err := simulate.New(simulate.Config{
		Runs:               cfg.Runs,
		BlocksPerRun:       cfg.BlocksPerRun,
		ExtrinsicsPerBlock: cfg.ExtrinsicsPerBlock,
		Accounts:           cfg.Accounts,
		Workers:            cfg.Workers,
		Seed:               cfg.Seed,
		Runtime: runtime.Config{
			PowPos: powpos.Config[model.Balance]{
				WorkThreshold:  cfg.WorkThreshold,
				StakeThreshold: cfg.StakeThreshold,
			},
		},
	}, logger.Named("simulate"), metrics.NewSimulation(), metrics.NewRuntime(cfg.Chain))
	if err != nil {
		return fmt.Errorf("init simulator: %w", err)
	}

	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("simulation finished",
		zap.Int("runs", report.Runs),
		zap.Int("blocks", report.Blocks),
		zap.Int("rejected_blocks", report.RejectedBlocks),
		zap.Int("extrinsics", report.Extrinsics),
		zap.Int("finalized", report.Finalized),
	)
	return nil
}
