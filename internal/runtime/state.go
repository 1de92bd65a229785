package runtime

import (
	"maps"
	"slices"

	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
)

// State is a point-in-time dump of every pallet, with map entries sorted by key.
type State struct {
	BlockNumber model.BlockNumber `yaml:"block_number"`
	Nonces      []AccountNonce    `yaml:"nonces"`
	Balances    []AccountBalance  `yaml:"balances"`
	Claims      []Claim           `yaml:"claims"`
	StakePool   []AccountBalance  `yaml:"stake_pool"`
	MinedBlocks []MinedBlock      `yaml:"mined_blocks"`
}

type AccountNonce struct {
	Account model.AccountID `yaml:"account"`
	Nonce   model.Nonce     `yaml:"nonce"`
}

type AccountBalance struct {
	Account model.AccountID `yaml:"account"`
	Amount  model.Balance   `yaml:"amount"`
}

type Claim struct {
	Content model.Content   `yaml:"content"`
	Owner   model.AccountID `yaml:"owner"`
}

type MinedBlock struct {
	BlockNumber model.BlockNumber `yaml:"block_number"`
	Miner       model.AccountID   `yaml:"miner"`
}

// Snapshot copies the current state of every pallet.
func (r *Runtime) Snapshot() State {
	nonces := r.system.Nonces()
	balances := r.balances.Balances()
	claims := r.proofOfExistence.Claims()
	stakes := r.powPos.StakePool()
	mined := r.powPos.MinedBlocks()

	state := State{
		BlockNumber: r.system.BlockNumber(),
		Nonces:      make([]AccountNonce, 0, len(nonces)),
		Balances:    make([]AccountBalance, 0, len(balances)),
		Claims:      make([]Claim, 0, len(claims)),
		StakePool:   make([]AccountBalance, 0, len(stakes)),
		MinedBlocks: make([]MinedBlock, 0, len(mined)),
	}
	for _, who := range slices.Sorted(maps.Keys(nonces)) {
		state.Nonces = append(state.Nonces, AccountNonce{Account: who, Nonce: nonces[who]})
	}
	for _, who := range slices.Sorted(maps.Keys(balances)) {
		state.Balances = append(state.Balances, AccountBalance{Account: who, Amount: balances[who]})
	}
	for _, content := range slices.Sorted(maps.Keys(claims)) {
		state.Claims = append(state.Claims, Claim{Content: content, Owner: claims[content]})
	}
	for _, who := range slices.Sorted(maps.Keys(stakes)) {
		state.StakePool = append(state.StakePool, AccountBalance{Account: who, Amount: stakes[who]})
	}
	for _, n := range slices.Sorted(maps.Keys(mined)) {
		state.MinedBlocks = append(state.MinedBlocks, MinedBlock{BlockNumber: n, Miner: mined[n]})
	}
	return state
}
