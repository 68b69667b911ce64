package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus"
	"github.com/polarysfoundation/polarys-bio/modules/metrics"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/sirupsen/logrus"
)

// Store persists blocks. prydb.Database is the production implementation.
type Store interface {
	CommitBlock(blk *block.Block) error
	GetBlockByHash(hash common.Hash) (*block.Block, error)
	GetBlockByHeight(height uint64) (*block.Block, error)
	GetLatestBlock() (*block.Block, error)
	HasBlock(hash common.Hash) bool
}

type Blockchain struct {
	chainID uint64
	engine  consensus.Engine
	genesis *block.Block
	latest  *block.Block
	store   Store
	log     *logrus.Logger

	// insertLock serialises AddBlock; lock guards latest.
	insertLock sync.Mutex
	lock       sync.RWMutex

	subsLock sync.Mutex
	subs     []chan *block.Block
}

var _ consensus.Chain = (*Blockchain)(nil)

func InitBlockchain(store Store, chainParams *params.ChainParams, engine consensus.Engine, genesis *GenesisBlock, log *logrus.Logger) (*Blockchain, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	if genesis == nil {
		genesis = DefaultGenesis(chainParams, engine.Difficulty())
	}

	genesisBlock, err := InitGenesisBlock(store, genesis)
	if err != nil {
		return nil, fmt.Errorf("failed to init genesis block: %w", err)
	}

	latest, err := store.GetLatestBlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read latest block: %w", err)
	}

	log.WithFields(logrus.Fields{
		"genesis": genesisBlock.Hash(),
		"height":  latest.Height(),
		"engine":  engine.Name(),
	}).Info("blockchain initialized")

	return &Blockchain{
		chainID: chainParams.ChainID,
		engine:  engine,
		genesis: genesisBlock,
		latest:  latest,
		store:   store,
		log:     log,
	}, nil
}

func (bc *Blockchain) ChainID() uint64 {
	return bc.chainID
}

func (bc *Blockchain) Engine() consensus.Engine {
	return bc.engine
}

func (bc *Blockchain) Genesis() *block.Block {
	return bc.genesis
}

func (bc *Blockchain) LatestBlock() *block.Block {
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	return bc.latest
}

func (bc *Blockchain) GetBlockByHash(hash common.Hash) (*block.Block, error) {
	return bc.store.GetBlockByHash(hash)
}

func (bc *Blockchain) GetBlockByHeight(height uint64) (*block.Block, error) {
	return bc.store.GetBlockByHeight(height)
}

func (bc *Blockchain) HasBlock(hash common.Hash) bool {
	return bc.store.HasBlock(hash)
}

// AddBlock appends a locally mined block.
func (bc *Blockchain) AddBlock(ctx context.Context, blk *block.Block) error {
	return bc.insert(ctx, blk, metrics.OriginLocal)
}

// AddRemoteBlock appends a block received from a peer after checking its signature.
func (bc *Blockchain) AddRemoteBlock(ctx context.Context, blk *block.Block) error {
	if err := blk.VerifySignature(); err != nil {
		return fmt.Errorf("rejected block %s: %w", blk.Hash(), err)
	}
	return bc.insert(ctx, blk, metrics.OriginRemote)
}

func (bc *Blockchain) insert(ctx context.Context, blk *block.Block, origin string) error {
	bc.insertLock.Lock()
	defer bc.insertLock.Unlock()

	if err := consensus.VerifyBlock(ctx, bc, bc.engine, blk); err != nil {
		return err
	}

	if err := bc.store.CommitBlock(blk); err != nil {
		return fmt.Errorf("failed to commit block: %w", err)
	}

	bc.lock.Lock()
	bc.latest = blk
	bc.lock.Unlock()

	metrics.BlockAccepted(origin)
	bc.log.WithFields(logrus.Fields{
		"height": blk.Height(),
		"hash":   blk.Hash(),
		"origin": origin,
	}).Info("block accepted")

	bc.notify(blk)
	return nil
}

// Subscribe returns a channel that receives new chain heads. A slow reader only
// sees the most recent head.
func (bc *Blockchain) Subscribe() <-chan *block.Block {
	ch := make(chan *block.Block, 1)

	bc.subsLock.Lock()
	bc.subs = append(bc.subs, ch)
	bc.subsLock.Unlock()

	return ch
}

func (bc *Blockchain) notify(blk *block.Block) {
	bc.subsLock.Lock()
	defer bc.subsLock.Unlock()

	for _, ch := range bc.subs {
		select {
		case ch <- blk:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- blk:
			default:
			}
		}
	}
}
