package runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/palletchain/internal/pallet/balances"
	"github.com/goodnatureofminers/palletchain/internal/pallet/existence"
	"github.com/goodnatureofminers/palletchain/internal/pallet/powpos"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"go.uber.org/zap"
)

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()

	rt, err := New(DefaultConfig(), append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return rt
}

func block(n model.BlockNumber, xts ...Extrinsic) Block {
	return Block{Header: Header{BlockNumber: n}, Extrinsics: xts}
}

func xt(caller model.AccountID, call RuntimeCall) Extrinsic {
	return Extrinsic{Caller: caller, Call: call}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.PowPos.WorkThreshold = 0
	if _, err := New(cfg); !errors.Is(err, powpos.ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want %v", err, powpos.ErrInvalidConfig)
	}
}

func TestRuntime_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		caller  model.AccountID
		call    RuntimeCall
		wantErr error
	}{
		{name: "balances transfer", caller: "alice", call: Balances{Call: Transfer{To: "bob", Amount: model.NewBalance(10)}}},
		{name: "balances insufficient", caller: "bob", call: Balances{Call: Transfer{To: "alice", Amount: model.NewBalance(10)}}, wantErr: balances.ErrInsufficientFunds},
		{name: "claim", caller: "alice", call: ProofOfExistence{Call: CreateClaim{Claim: "doc"}}},
		{name: "revoke unknown", caller: "alice", call: ProofOfExistence{Call: RevokeClaim{Claim: "other"}}, wantErr: existence.ErrClaimNotExist},
		{name: "stake", caller: "alice", call: PowPos{Call: Stake{Amount: model.NewBalance(60)}}},
		{name: "zero stake", caller: "alice", call: PowPos{Call: Stake{}}, wantErr: powpos.ErrInvalidStake},
		{name: "mine without stake", caller: "bob", call: PowPos{Call: MineBlock{BlockNumber: 1, ProofOfWork: 1}}, wantErr: powpos.ErrConsensusValidationFailed},
		{name: "nil call", caller: "alice", wantErr: ErrEmptyCall},
		{name: "nil pallet call", caller: "alice", call: PowPos{}, wantErr: ErrEmptyCall},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := newTestRuntime(t)
			rt.SetBalance("alice", model.NewBalance(100))
			if err := rt.Dispatch(tt.caller, tt.call); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Dispatch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRuntime_ExecuteBlockMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		number model.BlockNumber
	}{
		{name: "same number again", number: 1},
		{name: "skips ahead", number: 3},
		{name: "zero", number: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := newTestRuntime(t)
			rt.SetBalance("alice", model.NewBalance(100))
			if err := rt.ExecuteBlock(block(1)); err != nil {
				t.Fatalf("ExecuteBlock(1) error = %v", err)
			}
			before := rt.Snapshot()

			err := rt.ExecuteBlock(block(tt.number,
				xt("alice", Balances{Call: Transfer{To: "bob", Amount: model.NewBalance(1)}}),
				xt("alice", PowPos{Call: Stake{Amount: model.NewBalance(5)}}),
			))
			if !errors.Is(err, ErrBlockNumberMismatch) {
				t.Fatalf("ExecuteBlock(%d) error = %v, want %v", tt.number, err, ErrBlockNumberMismatch)
			}
			if after := rt.Snapshot(); !statesEqual(before, after) {
				t.Fatalf("rejected block mutated state:\nbefore %+v\nafter  %+v", before, after)
			}
			if got := rt.BlockNumber(); got != 1 {
				t.Fatalf("BlockNumber() = %d, want 1", got)
			}
		})
	}
}

func TestRuntime_ExecuteBlockPartialFailure(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t)
	rt.SetBalance("alice", model.NewBalance(100))

	err := rt.ExecuteBlock(block(1,
		xt("alice", Balances{Call: Transfer{To: "bob", Amount: model.NewBalance(30)}}),
		xt("bob", Balances{Call: Transfer{To: "charlie", Amount: model.NewBalance(31)}}),
		xt("alice", Balances{Call: Transfer{To: "charlie", Amount: model.NewBalance(20)}}),
	))
	if err != nil {
		t.Fatalf("ExecuteBlock() error = %v", err)
	}

	wantBalances := map[model.AccountID]uint64{"alice": 50, "bob": 30, "charlie": 20}
	for who, want := range wantBalances {
		if got := rt.Balance(who); got != model.NewBalance(want) {
			t.Fatalf("Balance(%s) = %s, want %d", who, got, want)
		}
	}
	wantNonces := map[model.AccountID]model.Nonce{"alice": 2, "bob": 1, "charlie": 0}
	for who, want := range wantNonces {
		if got := rt.Nonce(who); got != want {
			t.Fatalf("Nonce(%s) = %d, want %d", who, got, want)
		}
	}
	if got := rt.BlockNumber(); got != 1 {
		t.Fatalf("BlockNumber() = %d, want 1", got)
	}
}

func TestRuntime_ExecuteBlockConsensus(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t)
	if err := rt.Stake("alice", model.NewBalance(100)); err != nil {
		t.Fatalf("Stake() error = %v", err)
	}
	for n := model.BlockNumber(1); n <= 2; n++ {
		if err := rt.ExecuteBlock(block(n)); err != nil {
			t.Fatalf("ExecuteBlock(%d) error = %v", n, err)
		}
	}

	err := rt.ExecuteBlock(block(3,
		xt("alice", PowPos{Call: MineBlock{BlockNumber: 3, ProofOfWork: 5000}}),
		xt("bob", PowPos{Call: MineBlock{BlockNumber: 3, ProofOfWork: 10}}),
		xt("bob", PowPos{Call: Stake{Amount: model.NewBalance(50)}}),
		xt("bob", PowPos{Call: MineBlock{BlockNumber: 4, ProofOfWork: 9999}}),
	))
	if err != nil {
		t.Fatalf("ExecuteBlock(3) error = %v", err)
	}

	if miner, ok := rt.Miner(3); !ok || miner != "alice" {
		t.Fatalf("Miner(3) = %q, %v, want alice", miner, ok)
	}
	if miner, ok := rt.Miner(4); !ok || miner != "bob" {
		t.Fatalf("Miner(4) = %q, %v, want bob", miner, ok)
	}
	if got := rt.StakeOf("bob"); got != model.NewBalance(50) {
		t.Fatalf("StakeOf(bob) = %s, want 50", got)
	}
	if got := rt.Nonce("bob"); got != 3 {
		t.Fatalf("Nonce(bob) = %d, want 3", got)
	}
}

func TestRuntime_ExecuteBlockObservers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	metrics := NewMockMetrics(ctrl)
	sink := NewMockEventSink(ctrl)
	rt := newTestRuntime(t, WithMetrics(metrics), WithEventSink(sink))
	rt.SetBalance("alice", model.NewBalance(10))

	gomock.InOrder(
		metrics.EXPECT().ObserveDispatch(PalletBalances, "transfer", nil, gomock.AssignableToTypeOf(time.Time{})),
		sink.EXPECT().Record(Event{BlockNumber: 1, Index: 0, Caller: "alice", Pallet: PalletBalances, Call: "transfer"}),
		metrics.EXPECT().ObserveDispatch(PalletPowPos, "stake", powpos.ErrInvalidStake, gomock.Any()),
		sink.EXPECT().Record(Event{BlockNumber: 1, Index: 1, Caller: "bob", Pallet: PalletPowPos, Call: "stake", Err: powpos.ErrInvalidStake}),
		metrics.EXPECT().ObserveBlock(nil, 2, gomock.Any()),
		metrics.EXPECT().
			ObserveBlock(gomock.Any(), 0, gomock.Any()).
			Do(func(err error, _ int, _ time.Time) {
				if !errors.Is(err, ErrBlockNumberMismatch) {
					t.Errorf("ObserveBlock() got error %v, want %v", err, ErrBlockNumberMismatch)
				}
			}),
	)

	if err := rt.ExecuteBlock(block(1,
		xt("alice", Balances{Call: Transfer{To: "bob", Amount: model.NewBalance(10)}}),
		xt("bob", PowPos{Call: Stake{}}),
	)); err != nil {
		t.Fatalf("ExecuteBlock(1) error = %v", err)
	}
	if err := rt.ExecuteBlock(block(5)); !errors.Is(err, ErrBlockNumberMismatch) {
		t.Fatalf("ExecuteBlock(5) error = %v", err)
	}
}

func TestRuntime_Snapshot(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t)
	rt.SetBalance("carol", model.NewBalance(3))
	rt.SetBalance("alice", model.NewBalance(1))
	if err := rt.Stake("bob", model.NewBalance(70)); err != nil {
		t.Fatalf("Stake() error = %v", err)
	}
	if err := rt.ExecuteBlock(block(1,
		xt("bob", PowPos{Call: MineBlock{BlockNumber: 9, ProofOfWork: 1}}),
		xt("bob", PowPos{Call: MineBlock{BlockNumber: 2, ProofOfWork: 1}}),
		xt("alice", ProofOfExistence{Call: CreateClaim{Claim: "zeta"}}),
		xt("carol", ProofOfExistence{Call: CreateClaim{Claim: "alpha"}}),
	)); err != nil {
		t.Fatalf("ExecuteBlock() error = %v", err)
	}

	state := rt.Snapshot()
	if state.BlockNumber != 1 {
		t.Fatalf("BlockNumber = %d", state.BlockNumber)
	}
	if len(state.Balances) != 2 || state.Balances[0].Account != "alice" || state.Balances[1].Account != "carol" {
		t.Fatalf("Balances = %+v", state.Balances)
	}
	if len(state.Claims) != 2 || state.Claims[0].Content != "alpha" || state.Claims[0].Owner != "carol" {
		t.Fatalf("Claims = %+v", state.Claims)
	}
	if len(state.MinedBlocks) != 2 || state.MinedBlocks[0].BlockNumber != 2 || state.MinedBlocks[1].BlockNumber != 9 {
		t.Fatalf("MinedBlocks = %+v", state.MinedBlocks)
	}
	if len(state.Nonces) != 3 || state.Nonces[1].Account != "bob" || state.Nonces[1].Nonce != 2 {
		t.Fatalf("Nonces = %+v", state.Nonces)
	}
	if len(state.StakePool) != 1 || state.StakePool[0].Amount != model.NewBalance(70) {
		t.Fatalf("StakePool = %+v", state.StakePool)
	}
}

func TestRuntimeCall_Names(t *testing.T) {
	tests := []struct {
		call       RuntimeCall
		wantPallet string
		wantName   string
	}{
		{call: Balances{Call: Transfer{}}, wantPallet: "balances", wantName: "transfer"},
		{call: ProofOfExistence{Call: CreateClaim{}}, wantPallet: "proof_of_existence", wantName: "create_claim"},
		{call: ProofOfExistence{Call: RevokeClaim{}}, wantPallet: "proof_of_existence", wantName: "revoke_claim"},
		{call: PowPos{Call: Stake{}}, wantPallet: "pow_pos", wantName: "stake"},
		{call: PowPos{Call: MineBlock{}}, wantPallet: "pow_pos", wantName: "mine_block"},
		{call: PowPos{}, wantPallet: "pow_pos", wantName: ""},
	}
	for _, tt := range tests {
		if got := tt.call.Pallet(); got != tt.wantPallet {
			t.Errorf("Pallet() = %q, want %q", got, tt.wantPallet)
		}
		if got := tt.call.Name(); got != tt.wantName {
			t.Errorf("Name() = %q, want %q", got, tt.wantName)
		}
	}
}

func statesEqual(a, b State) bool {
	if a.BlockNumber != b.BlockNumber ||
		len(a.Nonces) != len(b.Nonces) ||
		len(a.Balances) != len(b.Balances) ||
		len(a.Claims) != len(b.Claims) ||
		len(a.StakePool) != len(b.StakePool) ||
		len(a.MinedBlocks) != len(b.MinedBlocks) {
		return false
	}
	for i := range a.Nonces {
		if a.Nonces[i] != b.Nonces[i] {
			return false
		}
	}
	for i := range a.Balances {
		if a.Balances[i] != b.Balances[i] {
			return false
		}
	}
	for i := range a.Claims {
		if a.Claims[i] != b.Claims[i] {
			return false
		}
	}
	for i := range a.StakePool {
		if a.StakePool[i] != b.StakePool[i] {
			return false
		}
	}
	for i := range a.MinedBlocks {
		if a.MinedBlocks[i] != b.MinedBlocks[i] {
			return false
		}
	}
	return true
}
