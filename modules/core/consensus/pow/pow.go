// Package pow is the default hash-based proof scheme. A proof is a decimal
// nonce, valid when the block hash has at least difficulty leading zero bits.
package pow

import (
	"context"
	"math"
	"strconv"

	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus"
	"github.com/polarysfoundation/polarys-bio/modules/utils"
	"github.com/sirupsen/logrus"
)

const Name = "pow"

var _ consensus.Engine = (*Consensus)(nil)

type Consensus struct {
	difficulty uint64
	rounds     int
	log        *logrus.Logger

	// offset picks the first nonce of a pass. Replaced in tests.
	offset func(rounds int) int
}

func InitConsensus(difficulty uint64, rounds int, log *logrus.Logger) *Consensus {
	return &Consensus{
		difficulty: difficulty,
		rounds:     rounds,
		log:        log,
		offset:     randomOffset,
	}
}

func randomOffset(rounds int) int {
	return utils.SecureRandomInt(0, math.MaxInt32-rounds)
}

func (c *Consensus) Name() string {
	return Name
}

func (c *Consensus) Difficulty() uint64 {
	return c.difficulty
}

// Candidates returns a window of rounds consecutive nonces starting at a random offset.
func (c *Consensus) Candidates() []int {
	start := c.offset(c.rounds)
	nonces := make([]int, c.rounds)
	for i := range nonces {
		nonces[i] = start + i
	}
	return nonces
}

func (c *Consensus) CandidateProof(ctx context.Context, blk *block.Block, nonce int) (string, error) {
	if blk == nil {
		return "", ErrNilBlock
	}
	return strconv.Itoa(nonce), nil
}

func (c *Consensus) IsProofValid(ctx context.Context, blk *block.Block) (bool, error) {
	if blk == nil {
		return false, ErrNilBlock
	}
	if blk.Proof() == "" {
		return false, block.ErrMissingProof
	}
	if _, err := strconv.ParseUint(blk.Proof(), 10, 64); err != nil {
		return false, ErrInvalidNonce
	}

	return blk.Hash().LeadingZeroBits() >= c.difficulty, nil
}
