package miner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus"
	"github.com/polarysfoundation/polarys-bio/modules/metrics"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/sirupsen/logrus"
)

// Chain is the part of the blockchain the worker builds on.
type Chain interface {
	LatestBlock() *block.Block
	AddBlock(ctx context.Context, blk *block.Block) error
	Subscribe() <-chan *block.Block
}

// Announcer sends found blocks to the network.
type Announcer interface {
	AnnounceBlock(blk *block.Block) error
}

// Worker searches for a valid proof on the block under construction. All
// searching happens on the goroutine started by Run, so the block has one writer.
type Worker struct {
	miner     *Miner
	engine    consensus.Engine
	chain     Chain
	announcer Announcer
	config    *params.ChainParams
	log       *logrus.Logger

	// current is replaced by the Run goroutine; mu guards the pointer only.
	mu      sync.RWMutex
	current *block.Block
	state   atomic.Int32
	queue   *taskQueue

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(miner *Miner, engine consensus.Engine, chain Chain, announcer Announcer, config *params.ChainParams, log *logrus.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		miner:     miner,
		engine:    engine,
		chain:     chain,
		announcer: announcer,
		config:    config,
		log:       log,
		queue:     newTaskQueue(),
		ctx:       ctx,
		cancel:    cancel,
	}
	w.startNewSearch()
	return w
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Current returns the block under construction. The block itself keeps
// receiving proofs while a search runs.
func (w *Worker) Current() *block.Block {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// PendingTasks reports how many tasks wait in the queue.
func (w *Worker) PendingTasks() int {
	return w.queue.len()
}

// Run starts mining until Stop is called.
func (w *Worker) Run() {
	heads := w.chain.Subscribe()
	w.queue.push(taskStartMining)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		for {
			select {
			case <-w.ctx.Done():
				w.setState(Stopped)
				return
			case <-w.queue.wait():
				if t, ok := w.queue.pop(); ok {
					w.handle(t)
				}
			case head := <-heads:
				w.onNewHead(head)
			}
		}
	}()
}

// onNewHead restarts the search when another block became the chain tip.
func (w *Worker) onNewHead(head *block.Block) {
	if head.Hash() == w.Current().Prev() {
		return
	}
	w.log.WithField("height", head.Height()).Debug("new chain head, restarting search")
	w.startNewSearch()
}

func (w *Worker) handle(t task) {
	switch t {
	case taskStartMining:
		w.setState(Idle)
		w.FindProof(false)
	default:
		w.log.WithField("task", t).Warn("unknown task")
	}
}

// FindProof runs one pass over the engine's candidates in order. The first
// valid proof is signed, announced and handed to the chain, and a new search
// begins. Unless oneAndDone is set, one start-mining task is queued afterwards.
func (w *Worker) FindProof(oneAndDone bool) {
	blk := w.Current()
	candidates := w.engine.Candidates()
	w.setState(Searching)

	found := false
	for _, candidate := range candidates {
		if w.ctx.Err() != nil {
			metrics.SearchPass(metrics.OutcomeAborted)
			w.setState(Stopped)
			return
		}

		proof, err := w.engine.CandidateProof(w.ctx, blk, candidate)
		if err != nil {
			w.log.WithField("candidate", candidate).Warn(err)
			continue
		}
		blk.SetProof(proof)

		ok, err := blk.HasValidProof(w.ctx)
		if err != nil {
			w.log.WithField("candidate", candidate).Warn(err)
			continue
		}
		if ok {
			w.log.WithFields(logrus.Fields{
				"height": blk.Height(),
				"width":  candidate,
			}).Infof("found proof for block %d: %s", blk.Height(), proof)
			found = true
			break
		}
	}

	if found {
		w.setState(Found)
		metrics.SearchPass(metrics.OutcomeFound)
		w.receive(blk)
		w.startNewSearch()
	} else {
		w.setState(Exhausted)
		metrics.SearchPass(metrics.OutcomeExhausted)
		w.log.WithField("height", blk.Height()).Debug("search exhausted")
	}

	if oneAndDone {
		w.setState(Stopped)
		return
	}
	w.queue.push(taskStartMining)
}

func (w *Worker) receive(blk *block.Block) {
	if err := w.miner.SignBlock(blk); err != nil {
		w.log.WithField("height", blk.Height()).Error(err)
		return
	}

	if err := w.announcer.AnnounceBlock(blk); err != nil {
		w.log.WithField("height", blk.Height()).Warn(err)
	}

	if err := w.chain.AddBlock(w.ctx, blk); err != nil {
		w.log.WithField("height", blk.Height()).Error(err)
	}
}

// startNewSearch discards the block under construction and starts a new one on the chain tip.
func (w *Worker) startNewSearch() {
	tip := w.chain.LatestBlock()
	blk := block.NewBlock(w.miner.Address(), tip, w.engine.Difficulty(), w.config.CoinbaseReward, w.engine)

	w.mu.Lock()
	w.current = blk
	w.mu.Unlock()
	w.setState(Idle)

	w.log.WithField("height", blk.Height()).Debug("starting new search")
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.setState(Stopped)
}
