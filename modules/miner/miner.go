package miner

import (
	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
)

type wallet interface {
	SignHash(a common.Address, h common.Hash) ([]byte, error)
	PubKey(a common.Address) (pec256.PubKey, error)
}

// Miner is the identity that collects block rewards and signs found blocks.
type Miner struct {
	address common.Address
	wallet  wallet
}

func NewMiner(address common.Address, wallet wallet) *Miner {
	return &Miner{
		address: address,
		wallet:  wallet,
	}
}

func (m *Miner) Address() common.Address {
	return m.address
}

func (m *Miner) PubKey() (pec256.PubKey, error) {
	return m.wallet.PubKey(m.address)
}

func (m *Miner) SignBlock(blk *block.Block) error {
	pub, err := m.wallet.PubKey(m.address)
	if err != nil {
		return err
	}

	signature, err := m.wallet.SignHash(m.address, blk.Hash())
	if err != nil {
		return err
	}

	blk.Seal(pub, signature)
	return nil
}
