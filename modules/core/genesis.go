package core

import (
	"errors"

	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/params"
)

// defaultGenesisTimestamp is fixed so that every node derives the same genesis hash.
const defaultGenesisTimestamp = 1735689600

type GenesisBlock struct {
	Timestamp      uint64         `json:"timestamp"`
	Difficulty     uint64         `json:"difficulty"`
	CoinbaseReward uint64         `json:"coinbase_reward"`
	RewardAddress  common.Address `json:"reward_address"`
	Data           []byte         `json:"data"`
}

func DefaultGenesis(chainParams *params.ChainParams, difficulty uint64) *GenesisBlock {
	return &GenesisBlock{
		Timestamp:      defaultGenesisTimestamp,
		Difficulty:     difficulty,
		CoinbaseReward: chainParams.CoinbaseReward,
		Data:           []byte("polarys-bio genesis"),
	}
}

func (g *GenesisBlock) ToBlock() (*block.Block, error) {
	if g == nil {
		return nil, ErrBlockNotInitialized
	}

	return block.NewBlockFromHeader(block.Header{
		Height:         0,
		Timestamp:      g.Timestamp,
		Difficulty:     g.Difficulty,
		CoinbaseReward: g.CoinbaseReward,
		RewardAddress:  g.RewardAddress,
		Data:           append([]byte(nil), g.Data...),
	}), nil
}

// InitGenesisBlock returns the stored genesis block, committing genesis first when
// the store is empty.
func InitGenesisBlock(store Store, genesis *GenesisBlock) (*block.Block, error) {
	blk, err := store.GetBlockByHeight(0)
	if err == nil {
		return blk, nil
	}
	if !errors.Is(err, ErrBlockNotFound) {
		return nil, err
	}

	blk, err = genesis.ToBlock()
	if err != nil {
		return nil, err
	}

	if err := store.CommitBlock(blk); err != nil {
		return nil, err
	}

	return blk, nil
}
