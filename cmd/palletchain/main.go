package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/palletchain/internal/journal"
	"github.com/goodnatureofminers/palletchain/internal/metrics"
	"github.com/goodnatureofminers/palletchain/internal/pallet/powpos"
	"github.com/goodnatureofminers/palletchain/internal/runtime"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/internal/scenario"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type config struct {
	Scenario       string        `long:"scenario" env:"PALLETCHAIN_SCENARIO" description:"YAML scenario file; the built-in demo runs when empty"`
	Journal        string        `long:"journal" env:"PALLETCHAIN_JOURNAL" description:"append dispatch outcomes as JSON lines to this file"`
	WorkThreshold  uint64        `long:"work-threshold" env:"PALLETCHAIN_WORK_THRESHOLD" description:"proof of work must be strictly below this value" default:"10000"`
	StakeThreshold model.Balance `long:"stake-threshold" env:"PALLETCHAIN_STAKE_THRESHOLD" description:"minimum stake of a block miner" default:"50"`
	Chain          string        `long:"chain" env:"PALLETCHAIN_CHAIN" description:"chain label attached to metrics" default:"dev"`
	MetricsAddr    string        `long:"metrics-addr" env:"PALLETCHAIN_METRICS_ADDR" description:"serve metrics on this address until interrupted"`
	LogJSON        bool          `long:"log-json" env:"PALLETCHAIN_LOG_JSON" description:"emit production JSON logs"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Fatal("palletchain failed", zap.Error(err))
	}
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg config, logger *zap.Logger, out io.Writer) error {
	var metricsDone <-chan struct{}
	if cfg.MetricsAddr != "" {
		metricsDone = metrics.StartServer(ctx, cfg.MetricsAddr, logger.Named("metrics"))
	}

	sc, err := loadScenario(cfg.Scenario)
	if err != nil {
		return err
	}

	opts := []runtime.Option{
		runtime.WithLogger(logger.Named("runtime")),
		runtime.WithMetrics(metrics.NewRuntime(cfg.Chain)),
	}
	if cfg.Journal != "" {
		f, err := os.OpenFile(cfg.Journal, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Error("failed to close journal", zap.Error(err))
			}
		}()
		j := journal.New(ctx, f, logger.Named("journal"))
		j.Start()
		// Stop flushes pending entries and must run before the file closes.
		defer j.Stop()
		opts = append(opts, runtime.WithEventSink(j))
	}

	rt, err := runtime.New(runtime.Config{
		PowPos: powpos.Config[model.Balance]{
			WorkThreshold:  cfg.WorkThreshold,
			StakeThreshold: cfg.StakeThreshold,
		},
	}, opts...)
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}

	if err := sc.Run(rt); err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	logger.Info("scenario finished",
		zap.Uint32("block_number", uint32(rt.BlockNumber())),
		zap.Int("mined_blocks", len(rt.MinedBlocks())),
	)

	enc := yaml.NewEncoder(out)
	if err := enc.Encode(rt.Snapshot()); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if metricsDone != nil {
		logger.Info("serving metrics until interrupted")
		<-metricsDone
	}
	return nil
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Default()
	}
	return scenario.LoadFile(path)
}
