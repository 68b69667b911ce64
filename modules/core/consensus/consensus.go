package consensus

import (
	"context"
	"fmt"

	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
)

// Engine is a proof scheme. The miner walks Candidates in order, installs
// CandidateProof on the block and keeps the first proof the engine accepts.
type Engine interface {
	block.ProofValidator

	Name() string
	// Difficulty is recorded on new blocks. Schemes that do not use it return 0.
	Difficulty() uint64
	// Candidates lists the inputs of one search pass, in trial order.
	Candidates() []int
	// CandidateProof derives the proof for candidate on blk.
	CandidateProof(ctx context.Context, blk *block.Block, candidate int) (string, error)
}

type Chain interface {
	GetBlockByHash(hash common.Hash) (*block.Block, error)
	GetBlockByHeight(height uint64) (*block.Block, error)
	LatestBlock() *block.Block
	HasBlock(hash common.Hash) bool
}

// VerifyBlock checks that blk extends the chain tip and that its proof is valid
// under engine. Forks are not handled: a block that does not extend the tip is rejected.
func VerifyBlock(ctx context.Context, chain Chain, engine Engine, blk *block.Block) error {
	if blk == nil {
		return ErrNilBlock
	}

	if chain.HasBlock(blk.Hash()) {
		return ErrDuplicatedBlock
	}

	tip := chain.LatestBlock()
	if tip == nil {
		return ErrNilPreviousBlock
	}
	if blk.Prev() != tip.Hash() {
		return fmt.Errorf("%w: prev %s, tip %s", ErrInvalidParent, blk.Prev(), tip.Hash())
	}
	if blk.Height() != tip.Height()+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidBlockHeight, blk.Height(), tip.Height()+1)
	}
	if blk.Difficulty() != engine.Difficulty() {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidDifficulty, blk.Difficulty(), engine.Difficulty())
	}

	blk.SetValidator(engine)
	ok, err := blk.HasValidProof(ctx)
	if err != nil {
		return fmt.Errorf("failed to check proof: %w", err)
	}
	if !ok {
		return ErrInvalidProof
	}

	return nil
}
