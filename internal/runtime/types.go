package runtime

import (
	"time"

	"github.com/goodnatureofminers/palletchain/internal/pallet/balances"
	"github.com/goodnatureofminers/palletchain/internal/pallet/existence"
	"github.com/goodnatureofminers/palletchain/internal/pallet/powpos"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/internal/runtime/support"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveBlock(err error, extrinsics int, started time.Time)
		ObserveDispatch(pallet, call string, err error, started time.Time)
	}
	EventSink interface {
		Record(event Event)
	}
)

// Event describes the outcome of one extrinsic.
type Event struct {
	BlockNumber model.BlockNumber
	Index       int
	Caller      model.AccountID
	Pallet      string
	Call        string
	Err         error
}

type (
	Header    = support.Header[model.BlockNumber]
	Extrinsic = support.Extrinsic[model.AccountID, RuntimeCall]
	Block     = support.Block[Header, Extrinsic]
)

type (
	BalancesCall = balances.Call[model.AccountID, model.Balance]
	Transfer     = balances.Transfer[model.AccountID, model.Balance]

	ProofOfExistenceCall = existence.Call[model.AccountID, model.Content]
	CreateClaim          = existence.CreateClaim[model.AccountID, model.Content]
	RevokeClaim          = existence.RevokeClaim[model.AccountID, model.Content]

	PowPosCall = powpos.Call[model.AccountID, model.Balance, model.BlockNumber]
	Stake      = powpos.Stake[model.AccountID, model.Balance, model.BlockNumber]
	MineBlock  = powpos.MineBlock[model.AccountID, model.Balance, model.BlockNumber]
)
