package block

import (
	"context"
	"encoding/json"
	"time"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
)

// ProofValidator decides whether the proof installed on a block is acceptable.
// Consensus engines implement it.
type ProofValidator interface {
	IsProofValid(ctx context.Context, b *Block) (bool, error)
}

type Block struct {
	header    Header
	hash      common.Hash
	validator ProofValidator
}

// NewBlock starts a block on top of prev. A nil prev starts a chain at height 0.
func NewBlock(rewardAddr common.Address, prev *Block, difficulty, coinbaseReward uint64, validator ProofValidator) *Block {
	header := Header{
		Timestamp:      uint64(time.Now().Unix()),
		Difficulty:     difficulty,
		CoinbaseReward: coinbaseReward,
		RewardAddress:  rewardAddr,
	}

	if prev != nil {
		header.Height = prev.Height() + 1
		header.Prev = prev.Hash()
	}

	return &Block{
		header:    header,
		validator: validator,
	}
}

func NewBlockFromHeader(header Header) *Block {
	return &Block{header: header}
}

func (b *Block) Header() Header {
	h := b.header
	h.Data = append([]byte(nil), b.header.Data...)
	h.Signer = append([]byte(nil), b.header.Signer...)
	h.Signature = append([]byte(nil), b.header.Signature...)
	return h
}

func (b *Block) Height() uint64 {
	return b.header.Height
}

func (b *Block) Prev() common.Hash {
	return b.header.Prev
}

func (b *Block) Timestamp() uint64 {
	return b.header.Timestamp
}

func (b *Block) Difficulty() uint64 {
	return b.header.Difficulty
}

func (b *Block) CoinbaseReward() uint64 {
	return b.header.CoinbaseReward
}

func (b *Block) RewardAddress() common.Address {
	return b.header.RewardAddress
}

func (b *Block) Data() []byte {
	return b.header.Data
}

func (b *Block) SetData(data []byte) {
	b.header.Data = data
	b.invalidate()
}

func (b *Block) Proof() string {
	return b.header.Proof
}

// SetProof replaces the block's proof. A block holds one proof at a time.
func (b *Block) SetProof(proof string) {
	b.header.Proof = proof
	b.invalidate()
}

func (b *Block) Signature() []byte {
	return b.header.Signature
}

func (b *Block) Signer() []byte {
	return b.header.Signer
}

func (b *Block) SetValidator(v ProofValidator) {
	b.validator = v
}

// HasValidProof asks the attached validator about the current proof.
func (b *Block) HasValidProof(ctx context.Context) (bool, error) {
	if b.validator == nil {
		return false, ErrNoValidator
	}
	if b.header.Proof == "" {
		return false, ErrMissingProof
	}
	return b.validator.IsProofValid(ctx, b)
}

func (b *Block) Hash() common.Hash {
	if b.hash.IsValid() {
		return b.hash
	}
	return b.CalcHash()
}

func (b *Block) CalcHash() common.Hash {
	data, err := b.header.sealData()
	if err != nil {
		panic(err)
	}

	b.hash = crypto.HashOf(data)
	return b.hash
}

func (b *Block) invalidate() {
	b.hash = common.Hash{}
	b.header.Signature = nil
	b.header.Signer = nil
}

// Seal attaches sig, a signature over Hash() by the key behind pub.
func (b *Block) Seal(pub pec256.PubKey, sig []byte) {
	b.header.Signer = append([]byte(nil), pub[:]...)
	b.header.Signature = append([]byte(nil), sig...)
}

// VerifySignature checks the signature and that the signer owns the reward address.
func (b *Block) VerifySignature() error {
	if len(b.header.Signature) == 0 || len(b.header.Signer) == 0 {
		return ErrNotSigned
	}

	pub := pec256.BytesToPubKey(b.header.Signer)
	if crypto.PubKeyToAddress(pub) != b.header.RewardAddress {
		return ErrSignerMismatch
	}

	ok, err := crypto.VerifyHash(b.Hash(), b.header.Signature, pub)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

// Copy returns an independent block with the same header and validator.
func (b *Block) Copy() *Block {
	return &Block{
		header:    b.Header(),
		hash:      b.hash,
		validator: b.validator,
	}
}

type encodedBlock struct {
	Header Header      `json:"header"`
	Hash   common.Hash `json:"hash"`
}

func (b *Block) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodedBlock{Header: b.header, Hash: b.Hash()})
}

// UnmarshalJSON rejects encodings whose hash does not match the header.
// The decoded block has no validator attached.
func (b *Block) UnmarshalJSON(data []byte) error {
	var enc encodedBlock
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}

	decoded := NewBlockFromHeader(enc.Header)
	if decoded.CalcHash() != enc.Hash {
		return ErrHashMismatch
	}

	*b = *decoded
	return nil
}

func Deserialize(data []byte) (*Block, error) {
	b := new(Block)
	if err := json.Unmarshal(data, b); err != nil {
		return nil, err
	}
	return b, nil
}
