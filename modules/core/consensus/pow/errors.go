package pow

import "errors"

var (
	ErrInvalidNonce = errors.New("invalid nonce")
	ErrNilBlock     = errors.New("block is nil")
)
