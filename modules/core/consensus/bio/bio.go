// Package bio implements the alignment-scored proof scheme. A proof is an
// alignment produced by the oracle for one width, and it is valid when the
// oracle scores it at least margin points above the session's base score.
package bio

import (
	"context"
	"fmt"

	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus"
	"github.com/polarysfoundation/polarys-bio/modules/oracle"
	"github.com/sirupsen/logrus"
)

const Name = "bio"

var _ consensus.Engine = (*Consensus)(nil)

type Consensus struct {
	oracle  oracle.Oracle
	session *oracle.Session
	margin  int64
	log     *logrus.Logger
}

func InitConsensus(o oracle.Oracle, session *oracle.Session, margin int64, log *logrus.Logger) *Consensus {
	return &Consensus{
		oracle:  o,
		session: session,
		margin:  margin,
		log:     log,
	}
}

func (c *Consensus) Name() string {
	return Name
}

func (c *Consensus) Difficulty() uint64 {
	return 0
}

// Threshold is the lowest accepted score.
func (c *Consensus) Threshold() int64 {
	return c.session.Threshold(c.margin)
}

// Candidates returns the session widths in the order the oracle reported them.
func (c *Consensus) Candidates() []int {
	return c.session.Widths()
}

func (c *Consensus) CandidateProof(ctx context.Context, blk *block.Block, width int) (string, error) {
	aln, err := c.oracle.Align(ctx, width)
	if err != nil {
		return "", fmt.Errorf("failed to align width %d: %w", width, err)
	}
	return aln, nil
}

func (c *Consensus) IsProofValid(ctx context.Context, blk *block.Block) (bool, error) {
	proof := blk.Proof()
	if proof == "" {
		return false, block.ErrMissingProof
	}

	score, err := c.oracle.Score(ctx, proof)
	if err != nil {
		return false, fmt.Errorf("failed to score proof: %w", err)
	}

	threshold := c.Threshold()
	c.log.WithFields(logrus.Fields{
		"height":    blk.Height(),
		"score":     score,
		"threshold": threshold,
	}).Debug("scored proof")

	return score >= threshold, nil
}
