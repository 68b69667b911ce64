package prydb

import (
	"encoding/json"
	"sync"

	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	polarysdb "github.com/polarysfoundation/polarys_db"
)

// Database stores blocks by hash and height and tracks the latest one.
type Database struct {
	db   *polarysdb.Database
	lock sync.RWMutex
}

// InitDB opens the encrypted store under datadir, keyed by passphrase.
func InitDB(datadir, passphrase string) (*Database, error) {
	db, err := polarysdb.Init(polarysdb.GenerateKeyFromBytes([]byte(passphrase)), datadir)
	if err != nil {
		return nil, err
	}

	database := &Database{db: db}
	if err := database.initialize(); err != nil {
		return nil, err
	}

	return database, nil
}

func (db *Database) initialize() error {
	for _, table := range []string{blocksByHash, blocksByHeight, blocksLatest} {
		if db.db.Exist(table) {
			continue
		}
		if err := db.db.Create(table); err != nil {
			return err
		}
	}
	return nil
}

// CommitBlock stores blk and makes it the latest block.
func (db *Database) CommitBlock(blk *block.Block) error {
	if blk == nil {
		return ErrNilBlock
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	if err := db.db.Write(blocksByHash, blk.Hash().String(), blk); err != nil {
		return err
	}

	if err := db.db.Write(blocksByHeight, heightKey(blk.Height()), blk); err != nil {
		return err
	}

	return db.db.Write(blocksLatest, latestKey, blk)
}

func (db *Database) GetBlockByHash(hash common.Hash) (*block.Block, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return db.readBlock(blocksByHash, hash.String())
}

func (db *Database) GetBlockByHeight(height uint64) (*block.Block, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return db.readBlock(blocksByHeight, heightKey(height))
}

func (db *Database) GetLatestBlock() (*block.Block, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return db.readBlock(blocksLatest, latestKey)
}

func (db *Database) HasBlock(hash common.Hash) bool {
	db.lock.RLock()
	defer db.lock.RUnlock()

	_, ok := db.db.Read(blocksByHash, hash.String())
	return ok
}

func (db *Database) readBlock(table, key string) (*block.Block, error) {
	data, ok := db.db.Read(table, key)
	if !ok {
		return nil, ErrBlockNotFound
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return block.Deserialize(b)
}
