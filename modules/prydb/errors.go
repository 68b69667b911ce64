package prydb

import "errors"

var (
	ErrBlockNotFound = errors.New("block not found")
	ErrNilBlock      = errors.New("block is nil")
)
