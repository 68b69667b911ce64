package node

import (
	"encoding/json"
	"errors"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
)

type Type int

const (
	PING Type = iota
	PONG
	BLOCK
	HASH
	ASK
)

func (t Type) String() string {
	switch t {
	case PING:
		return "PING"
	case PONG:
		return "PONG"
	case BLOCK:
		return "BLOCK"
	case HASH:
		return "HASH"
	case ASK:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrUnsignedMessage = errors.New("message is not signed")
	ErrBadSignature    = errors.New("invalid message signature")
	ErrWrongChain      = errors.New("message from another chain")
)

type Message struct {
	Type      Type   `json:"type"`
	ChainID   uint64 `json:"chain_id"`
	Data      []byte `json:"data"`
	PubKey    []byte `json:"pubkey"`
	Signature []byte `json:"signature"`
}

func NewMessage(t Type, chainID uint64, d []byte, pubKey pec256.PubKey) *Message {
	return &Message{
		Type:    t,
		ChainID: chainID,
		Data:    d,
		PubKey:  append([]byte(nil), pubKey[:]...),
	}
}

func (m *Message) DecodePubKey() pec256.PubKey {
	return pec256.BytesToPubKey(m.PubKey)
}

// SigningHash covers everything but the signature.
func (m *Message) SigningHash() (common.Hash, error) {
	b, err := json.Marshal(Message{Type: m.Type, ChainID: m.ChainID, Data: m.Data, PubKey: m.PubKey})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.HashOf(b), nil
}

func (m *Message) Sign(priv pec256.PrivKey) error {
	h, err := m.SigningHash()
	if err != nil {
		return err
	}

	sig, err := crypto.SignHash(h, priv)
	if err != nil {
		return err
	}

	m.Signature = sig
	return nil
}

func (m *Message) Verify() error {
	if len(m.Signature) == 0 || len(m.PubKey) == 0 {
		return ErrUnsignedMessage
	}

	h, err := m.SigningHash()
	if err != nil {
		return err
	}

	ok, err := crypto.VerifyHash(h, m.Signature, m.DecodePubKey())
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *Message) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
