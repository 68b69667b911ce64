package block

import "errors"

var (
	ErrNoValidator      = errors.New("block has no proof validator")
	ErrMissingProof     = errors.New("block has no proof")
	ErrNotSigned        = errors.New("block is not signed")
	ErrSignerMismatch   = errors.New("block signer does not match reward address")
	ErrInvalidSignature = errors.New("invalid block signature")
	ErrHashMismatch     = errors.New("block hash does not match its header")
)
