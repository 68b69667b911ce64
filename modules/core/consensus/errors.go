package consensus

import "errors"

var (
	ErrNilBlock           = errors.New("block is nil")
	ErrNilPreviousBlock   = errors.New("previous block is nil")
	ErrDuplicatedBlock    = errors.New("duplicated block")
	ErrInvalidParent      = errors.New("block does not extend the chain tip")
	ErrInvalidBlockHeight = errors.New("invalid block height")
	ErrInvalidDifficulty  = errors.New("invalid difficulty")
	ErrInvalidProof       = errors.New("invalid proof")
)
