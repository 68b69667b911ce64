package prydb

import "github.com/polarysfoundation/polarys-bio/modules/common"

const (
	blocksByHeight = "blocks_height"
	blocksByHash   = "blocks_hash"
	blocksLatest   = "blocks_latest"

	latestKey = "latest"
)

// heightKey is fixed width, so the height table lists blocks in chain order.
func heightKey(height uint64) string {
	return common.EncodeToHex(common.Uint64ToBytes(height))
}
