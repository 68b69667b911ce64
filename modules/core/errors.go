package core

import (
	"errors"

	"github.com/polarysfoundation/polarys-bio/modules/prydb"
)

var (
	ErrBlockNotInitialized = errors.New("block not initialized")
	ErrNilEngine           = errors.New("consensus engine is nil")

	// ErrBlockNotFound is what a Store returns for an unknown block.
	ErrBlockNotFound = prydb.ErrBlockNotFound
)
