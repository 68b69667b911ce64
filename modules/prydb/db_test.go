package prydb

import (
	"errors"
	"reflect"
	"testing"

	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
)

func TestDatabase_CommitAndRead(t *testing.T) {
	db, err := InitDB(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}

	addr := common.BytesToAddress([]byte("miner"))
	genesis := block.NewBlock(addr, nil, 0, 25, nil)
	genesis.SetProof("genesis")
	next := block.NewBlock(addr, genesis, 0, 25, nil)
	next.SetProof("[ACGT, A-GT]")

	for _, blk := range []*block.Block{genesis, next} {
		if err := db.CommitBlock(blk); err != nil {
			t.Fatalf("CommitBlock() error = %v", err)
		}
	}

	byHash, err := db.GetBlockByHash(next.Hash())
	if err != nil {
		t.Fatalf("GetBlockByHash() error = %v", err)
	}
	if !reflect.DeepEqual(byHash.Header(), next.Header()) {
		t.Errorf("GetBlockByHash() = %v, want %v", byHash.Header(), next.Header())
	}

	byHeight, err := db.GetBlockByHeight(0)
	if err != nil {
		t.Fatalf("GetBlockByHeight() error = %v", err)
	}
	if byHeight.Hash() != genesis.Hash() {
		t.Errorf("GetBlockByHeight(0) hash = %v, want %v", byHeight.Hash(), genesis.Hash())
	}

	latest, err := db.GetLatestBlock()
	if err != nil {
		t.Fatalf("GetLatestBlock() error = %v", err)
	}
	if latest.Hash() != next.Hash() {
		t.Errorf("GetLatestBlock() hash = %v, want %v", latest.Hash(), next.Hash())
	}

	if !db.HasBlock(genesis.Hash()) {
		t.Errorf("HasBlock(genesis) = false, want true")
	}
}

func TestDatabase_Missing(t *testing.T) {
	db, err := InitDB(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}

	if _, err := db.GetLatestBlock(); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("GetLatestBlock() error = %v, want %v", err, ErrBlockNotFound)
	}
	if db.HasBlock(common.BytesToHash([]byte("nope"))) {
		t.Errorf("HasBlock() = true, want false")
	}
	if err := db.CommitBlock(nil); !errors.Is(err, ErrNilBlock) {
		t.Errorf("CommitBlock(nil) error = %v, want %v", err, ErrNilBlock)
	}
}

func TestHeightKey(t *testing.T) {
	tests := []struct {
		height uint64
		want   string
	}{
		{0, "0x0000000000000000"},
		{1, "0x0000000000000001"},
		{256, "0x0000000000000100"},
	}
	for _, tt := range tests {
		if got := heightKey(tt.height); got != tt.want {
			t.Errorf("heightKey(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}

	if !(heightKey(9) < heightKey(10)) {
		t.Errorf("heightKey(9) = %v sorts after heightKey(10) = %v", heightKey(9), heightKey(10))
	}
}
