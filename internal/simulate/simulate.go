// Package simulate drives independent runtimes with random block sequences
// and checks the consensus invariants after every block.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/goodnatureofminers/palletchain/internal/runtime"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/pkg/safe"
	"github.com/goodnatureofminers/palletchain/pkg/workerpool"
	"go.uber.org/zap"
)

// ErrInvariantViolated is returned when a run observes state the runtime must never produce.
var ErrInvariantViolated = errors.New("invariant violated")

type Config struct {
	Runs               int
	BlocksPerRun       int
	ExtrinsicsPerBlock int
	Accounts           int
	Workers            int
	Seed               uint64
	Runtime            runtime.Config
}

func DefaultConfig() Config {
	return Config{
		Runs:               defaultRuns,
		BlocksPerRun:       defaultBlocksPerRun,
		ExtrinsicsPerBlock: defaultExtrinsicsPerBlock,
		Accounts:           defaultAccounts,
		Workers:            defaultWorkerCount,
		Runtime:            runtime.DefaultConfig(),
	}
}

// RunReport summarizes one runtime instance.
type RunReport struct {
	Seed           uint64
	Blocks         int
	RejectedBlocks int
	Extrinsics     int
	Finalized      int
}

// Report aggregates every run.
type Report struct {
	Runs           int
	Blocks         int
	RejectedBlocks int
	Extrinsics     int
	Finalized      int
}

type Simulator struct {
	cfg            Config
	lastBlock      model.BlockNumber
	logger         *zap.Logger
	metrics        Metrics
	runtimeMetrics runtime.Metrics
}

func New(cfg Config, logger *zap.Logger, metrics Metrics, runtimeMetrics runtime.Metrics) (*Simulator, error) {
	if cfg.Runs < 1 || cfg.BlocksPerRun < 1 || cfg.Accounts < 1 || cfg.ExtrinsicsPerBlock < 0 {
		return nil, errors.New("simulation needs at least one run, block and account")
	}
	lastBlock, err := safe.Uint32(cfg.BlocksPerRun)
	if err != nil {
		return nil, fmt.Errorf("blocks per run: %w", err)
	}
	if err := cfg.Runtime.PowPos.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		cfg:            cfg,
		lastBlock:      model.BlockNumber(lastBlock),
		logger:         logger,
		metrics:        metrics,
		runtimeMetrics: runtimeMetrics,
	}, nil
}

// Run executes every run concurrently and stops at the first violation.
func (s *Simulator) Run(ctx context.Context) (Report, error) {
	seeds := make([]uint64, s.cfg.Runs)
	for i := range seeds {
		seeds[i] = s.cfg.Seed + uint64(i)
	}

	runs, err := workerpool.Map(ctx, s.cfg.Workers, seeds, s.runOne)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, r := range runs {
		report.Runs++
		report.Blocks += r.Blocks
		report.RejectedBlocks += r.RejectedBlocks
		report.Extrinsics += r.Extrinsics
		report.Finalized += r.Finalized
	}
	return report, nil
}

func (s *Simulator) runOne(ctx context.Context, seed uint64) (report RunReport, err error) {
	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRun(err, report.Finalized, started)
		}
	}()

	logger := s.logger.With(zap.Uint64("seed", seed))
	opts := []runtime.Option{runtime.WithLogger(logger.Named("runtime"))}
	if s.runtimeMetrics != nil {
		opts = append(opts, runtime.WithMetrics(s.runtimeMetrics))
	}
	rt, err := runtime.New(s.cfg.Runtime, opts...)
	if err != nil {
		return report, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	accounts := make([]model.AccountID, s.cfg.Accounts)
	for i := range accounts {
		accounts[i] = model.AccountID("account-" + strconv.Itoa(i))
		rt.SetBalance(accounts[i], model.NewBalance(rng.Uint64N(maxGenesisBalance)))
	}

	g := &generator{rng: rng, accounts: accounts, workThreshold: s.cfg.Runtime.PowPos.WorkThreshold}
	report.Seed = seed
	for n := model.BlockNumber(1); n != 0 && n <= s.lastBlock; n++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if g.chance(badHeaderChance) {
			if err := s.checkRejected(rt, g.badBlock(n)); err != nil {
				return report, fmt.Errorf("seed %d block %d: %w", seed, n, err)
			}
			report.RejectedBlocks++
		}

		block := g.block(n, s.cfg.ExtrinsicsPerBlock)
		before := rt.MinedBlocks()
		if err := rt.ExecuteBlock(block); err != nil {
			return report, fmt.Errorf("seed %d block %d: %w", seed, n, err)
		}
		if err := s.checkBlock(rt, n, before); err != nil {
			return report, fmt.Errorf("seed %d block %d: %w", seed, n, err)
		}
		report.Blocks++
		report.Extrinsics += len(block.Extrinsics)
	}
	report.Finalized = len(rt.MinedBlocks())

	logger.Debug("run finished",
		zap.Int("blocks", report.Blocks),
		zap.Int("rejected", report.RejectedBlocks),
		zap.Int("finalized", report.Finalized),
	)
	return report, nil
}

// checkRejected executes a block with a wrong header and requires it to be
// refused without any state change.
func (s *Simulator) checkRejected(rt *runtime.Runtime, block runtime.Block) error {
	number := rt.BlockNumber()
	mined := rt.MinedBlocks()
	if err := rt.ExecuteBlock(block); !errors.Is(err, runtime.ErrBlockNumberMismatch) {
		return fmt.Errorf("%w: block with header %d accepted at height %d (err %v)", ErrInvariantViolated, block.Header.BlockNumber, number, err)
	}
	if rt.BlockNumber() != number {
		return fmt.Errorf("%w: rejected block moved the block number", ErrInvariantViolated)
	}
	if len(rt.MinedBlocks()) != len(mined) {
		return fmt.Errorf("%w: rejected block finalized a block number", ErrInvariantViolated)
	}
	return nil
}

// checkBlock verifies the write-once table and the admission rule after block n.
func (s *Simulator) checkBlock(rt *runtime.Runtime, n model.BlockNumber, before map[model.BlockNumber]model.AccountID) error {
	if rt.BlockNumber() != n {
		return fmt.Errorf("%w: block number %d after executing block %d", ErrInvariantViolated, rt.BlockNumber(), n)
	}
	after := rt.MinedBlocks()
	for number, miner := range before {
		if got, ok := after[number]; !ok || got != miner {
			return fmt.Errorf("%w: finalized block %d changed from %s to %q", ErrInvariantViolated, number, miner, got)
		}
	}
	threshold := s.cfg.Runtime.PowPos.StakeThreshold
	for number, miner := range after {
		if _, old := before[number]; old {
			continue
		}
		if rt.StakeOf(miner).Cmp(threshold) < 0 {
			return fmt.Errorf("%w: block %d finalized by %s below the stake threshold", ErrInvariantViolated, number, miner)
		}
	}
	return nil
}

type generator struct {
	rng           *rand.Rand
	accounts      []model.AccountID
	workThreshold uint64
}

func (g *generator) chance(percent int) bool {
	return g.rng.IntN(100) < percent
}

func (g *generator) account() model.AccountID {
	return g.accounts[g.rng.IntN(len(g.accounts))]
}

// badBlock returns an empty block whose number is anything but n.
func (g *generator) badBlock(n model.BlockNumber) runtime.Block {
	bad := n + 1 + model.BlockNumber(g.rng.IntN(3))
	if n > 1 && g.chance(50) {
		bad = n - 1
	}
	return runtime.Block{Header: runtime.Header{BlockNumber: bad}}
}

func (g *generator) block(n model.BlockNumber, extrinsics int) runtime.Block {
	block := runtime.Block{
		Header:     runtime.Header{BlockNumber: n},
		Extrinsics: make([]runtime.Extrinsic, 0, extrinsics),
	}
	for i := 0; i < extrinsics; i++ {
		block.Extrinsics = append(block.Extrinsics, runtime.Extrinsic{Caller: g.account(), Call: g.call(n)})
	}
	return block
}

func (g *generator) call(n model.BlockNumber) runtime.RuntimeCall {
	roll := g.rng.IntN(100)
	switch {
	case roll < stakeChance:
		return runtime.PowPos{Call: runtime.Stake{Amount: model.NewBalance(g.rng.Uint64N(maxStakeAmount))}}
	case roll < stakeChance+mineChance:
		target := model.BlockNumber(1 + g.rng.Uint64N(uint64(n)+2))
		return runtime.PowPos{Call: runtime.MineBlock{BlockNumber: target, ProofOfWork: g.proofOfWork()}}
	default:
		return runtime.Balances{Call: runtime.Transfer{To: g.account(), Amount: model.NewBalance(g.rng.Uint64N(maxGenesisBalance / 4))}}
	}
}

// proofOfWork returns a passing proof about half of the time.
func (g *generator) proofOfWork() uint64 {
	if g.chance(50) {
		return g.rng.Uint64N(g.workThreshold)
	}
	return g.workThreshold + g.rng.Uint64N(math.MaxUint64-g.workThreshold+1)
}
