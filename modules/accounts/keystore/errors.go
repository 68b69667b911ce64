package keystore

import "errors"

var (
	ErrLocked          = errors.New("wallet is locked")
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrAccountNotFound = errors.New("account not found")
	ErrAddressMismatch = errors.New("key does not match address")
)
