// Package runtime composes the pallets into a single state machine that
// executes blocks of extrinsics.
package runtime

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/palletchain/internal/pallet/balances"
	"github.com/goodnatureofminers/palletchain/internal/pallet/existence"
	"github.com/goodnatureofminers/palletchain/internal/pallet/powpos"
	"github.com/goodnatureofminers/palletchain/internal/pallet/system"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/internal/runtime/support"
	"go.uber.org/zap"
)

var (
	_ support.Dispatcher[model.AccountID, RuntimeCall] = (*Runtime)(nil)
	_ router                                           = (*Runtime)(nil)
)

var (
	_ balances.Handler[model.AccountID, model.Balance]                  = (*balances.Pallet[model.AccountID, model.Balance])(nil)
	_ existence.Handler[model.AccountID, model.Content]                 = (*existence.Pallet[model.AccountID, model.Content])(nil)
	_ powpos.Handler[model.AccountID, model.Balance, model.BlockNumber] = (*powpos.Pallet[model.AccountID, model.Balance, model.BlockNumber])(nil)
)

// Config holds the runtime parameters.
type Config struct {
	PowPos powpos.Config[model.Balance]
}

// DefaultConfig returns the thresholds the runtime ships with.
func DefaultConfig() Config {
	return Config{
		PowPos: powpos.Config[model.Balance]{
			WorkThreshold:  powpos.DefaultWorkThreshold,
			StakeThreshold: model.NewBalance(powpos.DefaultStakeThreshold),
		},
	}
}

type Option func(*Runtime)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(r *Runtime) {
		r.metrics = metrics
	}
}

func WithEventSink(sink EventSink) Option {
	return func(r *Runtime) {
		r.sink = sink
	}
}

// Runtime owns every pallet. It is not safe for concurrent use; blocks must
// be executed one after another.
type Runtime struct {
	logger  *zap.Logger
	metrics Metrics
	sink    EventSink

	system           *system.Pallet[model.AccountID, model.BlockNumber, model.Nonce]
	balances         *balances.Pallet[model.AccountID, model.Balance]
	proofOfExistence *existence.Pallet[model.AccountID, model.Content]
	powPos           *powpos.Pallet[model.AccountID, model.Balance, model.BlockNumber]
}

// New builds a Runtime with empty state.
func New(cfg Config, opts ...Option) (*Runtime, error) {
	powPos, err := powpos.New[model.AccountID, model.Balance, model.BlockNumber](cfg.PowPos)
	if err != nil {
		return nil, fmt.Errorf("init pow_pos pallet: %w", err)
	}

	r := &Runtime{
		logger:           zap.NewNop(),
		system:           system.New[model.AccountID, model.BlockNumber, model.Nonce](),
		balances:         balances.New[model.AccountID, model.Balance](),
		proofOfExistence: existence.New[model.AccountID, model.Content](),
		powPos:           powPos,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r, nil
}

// ExecuteBlock validates the header and applies every extrinsic in order.
// A header that does not carry the next block number rejects the whole block
// and leaves state untouched. A failing extrinsic is reported and skipped;
// the remaining extrinsics still run.
func (r *Runtime) ExecuteBlock(block Block) (err error) {
	started := time.Now()
	defer func() {
		r.observeBlock(err, len(block.Extrinsics), started)
	}()

	expected, err := r.system.NextBlockNumber()
	if err != nil {
		return fmt.Errorf("advance block number: %w", err)
	}
	if block.Header.BlockNumber != expected {
		r.logger.Warn("block rejected",
			zap.Uint32("block", uint32(block.Header.BlockNumber)),
			zap.Uint32("expected", uint32(expected)),
		)
		return fmt.Errorf("%w: got %d, want %d", ErrBlockNumberMismatch, block.Header.BlockNumber, expected)
	}
	if err = r.system.IncBlockNumber(); err != nil {
		return fmt.Errorf("advance block number: %w", err)
	}

	logger := r.logger.With(zap.Uint32("block", uint32(expected)))
	failed := 0
	for i, xt := range block.Extrinsics {
		if xtErr := r.applyExtrinsic(expected, i, xt); xtErr != nil {
			failed++
			logger.Warn("extrinsic failed",
				zap.Int("extrinsic", i),
				zap.String("caller", string(xt.Caller)),
				zap.String("pallet", palletName(xt.Call)),
				zap.String("call", callName(xt.Call)),
				zap.Error(xtErr),
			)
		}
	}
	logger.Debug("block executed", zap.Int("extrinsics", len(block.Extrinsics)), zap.Int("failed", failed))
	return nil
}

func (r *Runtime) applyExtrinsic(blockNumber model.BlockNumber, index int, xt Extrinsic) (err error) {
	started := time.Now()
	defer func() {
		r.observeDispatch(xt, err, started)
		r.record(Event{
			BlockNumber: blockNumber,
			Index:       index,
			Caller:      xt.Caller,
			Pallet:      palletName(xt.Call),
			Call:        callName(xt.Call),
			Err:         err,
		})
	}()

	if err = r.system.IncNonce(xt.Caller); err != nil {
		return err
	}
	return r.Dispatch(xt.Caller, xt.Call)
}

// Dispatch routes call to its pallet on behalf of caller.
func (r *Runtime) Dispatch(caller model.AccountID, call RuntimeCall) error {
	if call == nil {
		return ErrEmptyCall
	}
	return call.route(caller, r)
}

func (r *Runtime) dispatchBalances(caller model.AccountID, call BalancesCall) error {
	if call == nil {
		return ErrEmptyCall
	}
	return r.balances.Dispatch(caller, call)
}

func (r *Runtime) dispatchProofOfExistence(caller model.AccountID, call ProofOfExistenceCall) error {
	if call == nil {
		return ErrEmptyCall
	}
	return r.proofOfExistence.Dispatch(caller, call)
}

func (r *Runtime) dispatchPowPos(caller model.AccountID, call PowPosCall) error {
	if call == nil {
		return ErrEmptyCall
	}
	return r.powPos.Dispatch(caller, call)
}

// SetBalance seeds an account balance at genesis.
func (r *Runtime) SetBalance(who model.AccountID, amount model.Balance) {
	r.balances.SetBalance(who, amount)
}

// Stake seeds stake at genesis, outside of any block.
func (r *Runtime) Stake(who model.AccountID, amount model.Balance) error {
	return r.powPos.Stake(who, amount)
}

func (r *Runtime) BlockNumber() model.BlockNumber {
	return r.system.BlockNumber()
}

func (r *Runtime) Nonce(who model.AccountID) model.Nonce {
	return r.system.Nonce(who)
}

func (r *Runtime) Balance(who model.AccountID) model.Balance {
	return r.balances.Balance(who)
}

func (r *Runtime) ClaimOwner(claim model.Content) (model.AccountID, bool) {
	return r.proofOfExistence.Owner(claim)
}

func (r *Runtime) StakeOf(who model.AccountID) model.Balance {
	return r.powPos.StakeOf(who)
}

func (r *Runtime) Miner(blockNumber model.BlockNumber) (model.AccountID, bool) {
	return r.powPos.Miner(blockNumber)
}

// MinedBlocks returns a copy of the finalized block table.
func (r *Runtime) MinedBlocks() map[model.BlockNumber]model.AccountID {
	return r.powPos.MinedBlocks()
}

func (r *Runtime) ConsensusConfig() powpos.Config[model.Balance] {
	return r.powPos.Config()
}

func (r *Runtime) observeBlock(err error, extrinsics int, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveBlock(err, extrinsics, started)
}

func (r *Runtime) observeDispatch(xt Extrinsic, err error, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveDispatch(palletName(xt.Call), callName(xt.Call), err, started)
}

func (r *Runtime) record(event Event) {
	if r.sink == nil {
		return
	}
	r.sink.Record(event)
}

func palletName(call RuntimeCall) string {
	if call == nil {
		return ""
	}
	return call.Pallet()
}
