package block

import (
	"encoding/json"

	"github.com/polarysfoundation/polarys-bio/modules/common"
)

type Header struct {
	Height         uint64         `json:"height"`
	Prev           common.Hash    `json:"prev"`
	Timestamp      uint64         `json:"timestamp"`
	Difficulty     uint64         `json:"difficulty"`
	CoinbaseReward uint64         `json:"coinbase_reward"`
	RewardAddress  common.Address `json:"reward_address"`
	Data           []byte         `json:"data"`
	Proof          string         `json:"proof"`
	Signer         []byte         `json:"signer"`
	Signature      []byte         `json:"signature"`
}

func (h Header) Serialize() ([]byte, error) {
	return json.Marshal(h)
}

// sealData is the encoding covered by the block hash. The signer and signature
// are excluded so that signing does not change the hash.
func (h Header) sealData() ([]byte, error) {
	h.Signer = nil
	h.Signature = nil
	return h.Serialize()
}
