// Package scenario loads a genesis state and a pre-assembled block sequence
// and runs them through a runtime.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/goodnatureofminers/palletchain/internal/runtime"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultScenario []byte

var (
	ErrNoCall        = errors.New("extrinsic has no call")
	ErrMultipleCalls = errors.New("extrinsic has more than one call")
	ErrNoCaller      = errors.New("extrinsic has no caller")
)

type Scenario struct {
	Genesis Genesis     `yaml:"genesis"`
	Blocks  []BlockSpec `yaml:"blocks"`
}

type Genesis struct {
	Balances map[model.AccountID]model.Balance `yaml:"balances"`
	Stakes   map[model.AccountID]model.Balance `yaml:"stakes"`
}

type BlockSpec struct {
	Number     model.BlockNumber `yaml:"number"`
	Extrinsics []ExtrinsicSpec   `yaml:"extrinsics"`
}

// ExtrinsicSpec names its caller and exactly one call.
type ExtrinsicSpec struct {
	Caller      model.AccountID `yaml:"caller"`
	Transfer    *TransferSpec   `yaml:"transfer,omitempty"`
	CreateClaim *ClaimSpec      `yaml:"create_claim,omitempty"`
	RevokeClaim *ClaimSpec      `yaml:"revoke_claim,omitempty"`
	Stake       *StakeSpec      `yaml:"stake,omitempty"`
	MineBlock   *MineBlockSpec  `yaml:"mine_block,omitempty"`
}

type TransferSpec struct {
	To     model.AccountID `yaml:"to"`
	Amount model.Balance   `yaml:"amount"`
}

type ClaimSpec struct {
	Claim model.Content `yaml:"claim"`
}

type StakeSpec struct {
	Amount model.Balance `yaml:"amount"`
}

type MineBlockSpec struct {
	BlockNumber model.BlockNumber `yaml:"block_number"`
	ProofOfWork uint64            `yaml:"proof_of_work"`
}

// Default returns the built-in demo scenario.
func Default() (*Scenario, error) {
	return Load(bytes.NewReader(defaultScenario))
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Load decodes and validates a scenario. Unknown keys are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	for i, b := range s.Blocks {
		for j, xt := range b.Extrinsics {
			if _, err := xt.Call(); err != nil {
				return fmt.Errorf("block %d (#%d) extrinsic %d: %w", b.Number, i, j, err)
			}
		}
	}
	return nil
}

// Call converts x into a runtime call.
func (x ExtrinsicSpec) Call() (runtime.RuntimeCall, error) {
	if x.Caller == "" {
		return nil, ErrNoCaller
	}

	var calls []runtime.RuntimeCall
	if x.Transfer != nil {
		calls = append(calls, runtime.Balances{Call: runtime.Transfer{To: x.Transfer.To, Amount: x.Transfer.Amount}})
	}
	if x.CreateClaim != nil {
		calls = append(calls, runtime.ProofOfExistence{Call: runtime.CreateClaim{Claim: x.CreateClaim.Claim}})
	}
	if x.RevokeClaim != nil {
		calls = append(calls, runtime.ProofOfExistence{Call: runtime.RevokeClaim{Claim: x.RevokeClaim.Claim}})
	}
	if x.Stake != nil {
		calls = append(calls, runtime.PowPos{Call: runtime.Stake{Amount: x.Stake.Amount}})
	}
	if x.MineBlock != nil {
		calls = append(calls, runtime.PowPos{Call: runtime.MineBlock{BlockNumber: x.MineBlock.BlockNumber, ProofOfWork: x.MineBlock.ProofOfWork}})
	}

	switch len(calls) {
	case 0:
		return nil, ErrNoCall
	case 1:
		return calls[0], nil
	default:
		return nil, ErrMultipleCalls
	}
}

// RuntimeBlocks converts every scenario block into a runtime block.
func (s *Scenario) RuntimeBlocks() ([]runtime.Block, error) {
	blocks := make([]runtime.Block, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		block := runtime.Block{
			Header:     runtime.Header{BlockNumber: b.Number},
			Extrinsics: make([]runtime.Extrinsic, 0, len(b.Extrinsics)),
		}
		for j, xt := range b.Extrinsics {
			call, err := xt.Call()
			if err != nil {
				return nil, fmt.Errorf("block %d extrinsic %d: %w", b.Number, j, err)
			}
			block.Extrinsics = append(block.Extrinsics, runtime.Extrinsic{Caller: xt.Caller, Call: call})
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// ApplyGenesis seeds balances and stakes, in account order.
func (s *Scenario) ApplyGenesis(rt *runtime.Runtime) error {
	for _, who := range slices.Sorted(maps.Keys(s.Genesis.Balances)) {
		rt.SetBalance(who, s.Genesis.Balances[who])
	}
	for _, who := range slices.Sorted(maps.Keys(s.Genesis.Stakes)) {
		if err := rt.Stake(who, s.Genesis.Stakes[who]); err != nil {
			return fmt.Errorf("genesis stake for %s: %w", who, err)
		}
	}
	return nil
}

// Run seeds genesis and executes every block in order. It stops at the first
// block the runtime rejects.
func (s *Scenario) Run(rt *runtime.Runtime) error {
	if err := s.ApplyGenesis(rt); err != nil {
		return err
	}
	blocks, err := s.RuntimeBlocks()
	if err != nil {
		return err
	}
	for _, block := range blocks {
		if err := rt.ExecuteBlock(block); err != nil {
			return fmt.Errorf("execute block %d: %w", block.Header.BlockNumber, err)
		}
	}
	return nil
}
