package node

import (
	"context"
	"errors"
	"io"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
	"github.com/polarysfoundation/polarys-bio/modules/p2p"
	"github.com/sirupsen/logrus"
)

const testChainID = 7

func testNode() *Node {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Node{
		peers: make(map[string]*p2p.Peer),
		log:   log,
	}
}

type packet struct {
	to  string
	msg *Message
}

// recordingConn keeps every packet the node writes.
type recordingConn struct {
	mu   sync.Mutex
	sent []packet
}

func (c *recordingConn) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	msg := &Message{}
	if err := msg.Unmarshal(b); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, packet{to: addr.String(), msg: msg})
	return len(b), nil
}

func (c *recordingConn) packets() []packet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]packet(nil), c.sent...)
}

type fakeChain struct {
	blocks map[common.Hash]*block.Block
	added  []*block.Block
	addErr error
}

func newFakeChain(blocks ...*block.Block) *fakeChain {
	c := &fakeChain{blocks: make(map[common.Hash]*block.Block)}
	for _, blk := range blocks {
		c.blocks[blk.Hash()] = blk
	}
	return c
}

func (c *fakeChain) ChainID() uint64 {
	return testChainID
}

func (c *fakeChain) AddRemoteBlock(ctx context.Context, blk *block.Block) error {
	if c.addErr != nil {
		return c.addErr
	}
	c.added = append(c.added, blk)
	c.blocks[blk.Hash()] = blk
	return nil
}

func (c *fakeChain) HasBlock(hash common.Hash) bool {
	_, ok := c.blocks[hash]
	return ok
}

func (c *fakeChain) GetBlockByHash(hash common.Hash) (*block.Block, error) {
	blk, ok := c.blocks[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	return blk, nil
}

var (
	senderAddr = &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5865}
	otherAddr  = &net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 5865}
)

// runningNode is a node with keys, a chain and a recording connection, that
// already knows otherAddr.
func runningNode(t *testing.T, bc *fakeChain) (*Node, *recordingConn) {
	t.Helper()

	priv, pub, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	conn := &recordingConn{}
	n := testNode()
	n.privKey = priv
	n.pubKey = pub
	n.chainID = bc.ChainID()
	n.bc = bc
	n.conn = conn
	n.peers[otherAddr.String()] = p2p.NewPeer(otherAddr, version, pec256.PubKey{}, uint64(time.Now().Unix()))
	return n, conn
}

func remoteMessage(t *testing.T, typ Type, chainID uint64, data []byte) *Message {
	t.Helper()

	priv, pub, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	msg := NewMessage(typ, chainID, data, pub)
	if err := msg.Sign(priv); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return msg
}

func serializedBlock(t *testing.T, blk *block.Block) []byte {
	t.Helper()

	data, err := blk.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	return data
}

func TestNode_PrunePeers(t *testing.T) {
	n := testNode()
	now := time.Unix(1000, 0)

	trusted := p2p.NewTrustedPeer(&net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 1}, version, 0)
	stale := p2p.NewPeer(&net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 2}, version, pec256.PubKey{}, 900)
	fresh := p2p.NewPeer(&net.UDPAddr{IP: net.ParseIP("10.0.0.3"), Port: 3}, version, pec256.PubKey{}, 990)
	for _, p := range []*p2p.Peer{trusted, stale, fresh} {
		n.peers[p.Addr().String()] = p
	}

	n.prunePeers(now)

	if _, ok := n.peers[trusted.Addr().String()]; !ok {
		t.Errorf("trusted peer pruned")
	}
	if _, ok := n.peers[stale.Addr().String()]; ok {
		t.Errorf("stale peer kept")
	}
	if _, ok := n.peers[fresh.Addr().String()]; !ok {
		t.Errorf("fresh peer pruned")
	}
}

func TestNode_TouchPeer(t *testing.T) {
	n := testNode()
	addr := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 1}
	n.peers[addr.String()] = p2p.NewTrustedPeer(addr, version, 0)

	n.touchPeer(addr, pec256.PubKey{})

	peer := n.peers[addr.String()]
	if peer.LastSeen() == 0 {
		t.Errorf("LastSeen() not updated")
	}
	if !peer.Trusted() {
		t.Errorf("touch dropped the trusted flag")
	}

	other := &net.UDPAddr{IP: net.ParseIP("10.0.0.9"), Port: 9}
	n.touchPeer(other, pec256.PubKey{})
	if len(n.Peers()) != 2 {
		t.Errorf("len(Peers()) = %d, want 2", len(n.Peers()))
	}
}

func TestNode_AnnounceBlockNotRunning(t *testing.T) {
	n := testNode()
	blk := block.NewBlock(common.Address{}, nil, 0, 25, nil)

	if err := n.AnnounceBlock(blk); !errors.Is(err, ErrNotRunning) {
		t.Errorf("AnnounceBlock() error = %v, want %v", err, ErrNotRunning)
	}
}

func TestNode_HandleMessage(t *testing.T) {
	genesis := block.NewBlock(common.Address{}, nil, 0, 25, nil)
	genesis.SetProof("genesis")
	next := block.NewBlock(common.Address{}, genesis, 0, 25, nil)
	next.SetProof("[ACGT, A-GT]")

	type sent struct {
		to   string
		typ  Type
		data []byte
	}

	tests := []struct {
		name      string
		chain     func() *fakeChain
		msg       func(t *testing.T) *Message
		wantSent  []sent
		wantAdded int
		wantPeer  bool
	}{
		{
			name:     "ping answered with pong",
			chain:    func() *fakeChain { return newFakeChain(genesis) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, PING, testChainID, nil) },
			wantSent: []sent{{to: senderAddr.String(), typ: PONG}},
			wantPeer: true,
		},
		{
			name:      "new block added and hash relayed to other peers",
			chain:     func() *fakeChain { return newFakeChain(genesis) },
			msg:       func(t *testing.T) *Message { return remoteMessage(t, BLOCK, testChainID, serializedBlock(t, next)) },
			wantSent:  []sent{{to: otherAddr.String(), typ: HASH, data: next.Hash().Bytes()}},
			wantAdded: 1,
			wantPeer:  true,
		},
		{
			name:     "known block ignored",
			chain:    func() *fakeChain { return newFakeChain(genesis, next) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, BLOCK, testChainID, serializedBlock(t, next)) },
			wantPeer: true,
		},
		{
			name: "rejected block not relayed",
			chain: func() *fakeChain {
				c := newFakeChain(genesis)
				c.addErr = errors.New("invalid proof")
				return c
			},
			msg:      func(t *testing.T) *Message { return remoteMessage(t, BLOCK, testChainID, serializedBlock(t, next)) },
			wantPeer: true,
		},
		{
			name:     "unknown hash asked back",
			chain:    func() *fakeChain { return newFakeChain(genesis) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, HASH, testChainID, next.Hash().Bytes()) },
			wantSent: []sent{{to: senderAddr.String(), typ: ASK, data: next.Hash().Bytes()}},
			wantPeer: true,
		},
		{
			name:     "known hash ignored",
			chain:    func() *fakeChain { return newFakeChain(genesis, next) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, HASH, testChainID, next.Hash().Bytes()) },
			wantPeer: true,
		},
		{
			name:     "ask answered with the block",
			chain:    func() *fakeChain { return newFakeChain(genesis, next) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, ASK, testChainID, next.Hash().Bytes()) },
			wantSent: []sent{{to: senderAddr.String(), typ: BLOCK, data: serializedBlock(t, next)}},
			wantPeer: true,
		},
		{
			name:     "ask for unknown block ignored",
			chain:    func() *fakeChain { return newFakeChain(genesis) },
			msg:      func(t *testing.T) *Message { return remoteMessage(t, ASK, testChainID, next.Hash().Bytes()) },
			wantPeer: true,
		},
		{
			name:  "tampered message dropped",
			chain: func() *fakeChain { return newFakeChain(genesis) },
			msg: func(t *testing.T) *Message {
				msg := remoteMessage(t, BLOCK, testChainID, serializedBlock(t, next))
				msg.Type = HASH
				return msg
			},
		},
		{
			name:  "unsigned message dropped",
			chain: func() *fakeChain { return newFakeChain(genesis) },
			msg: func(t *testing.T) *Message {
				return NewMessage(BLOCK, testChainID, serializedBlock(t, next), pec256.PubKey{})
			},
		},
		{
			name:  "other chain dropped",
			chain: func() *fakeChain { return newFakeChain(genesis) },
			msg: func(t *testing.T) *Message {
				return remoteMessage(t, BLOCK, testChainID+1, serializedBlock(t, next))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := tt.chain()
			n, conn := runningNode(t, bc)

			n.handleMessage(context.Background(), tt.msg(t), senderAddr)

			var got []sent
			for _, p := range conn.packets() {
				if err := p.msg.Verify(); err != nil {
					t.Errorf("sent %v message does not verify: %v", p.msg.Type, err)
				}
				if p.msg.ChainID != testChainID {
					t.Errorf("sent ChainID = %d, want %d", p.msg.ChainID, testChainID)
				}
				var data []byte
				if len(p.msg.Data) > 0 {
					data = p.msg.Data
				}
				got = append(got, sent{to: p.to, typ: p.msg.Type, data: data})
			}
			if !reflect.DeepEqual(got, tt.wantSent) {
				t.Errorf("sent = %+v, want %+v", got, tt.wantSent)
			}

			if len(bc.added) != tt.wantAdded {
				t.Errorf("AddRemoteBlock() calls = %d, want %d", len(bc.added), tt.wantAdded)
			}
			if tt.wantAdded > 0 && bc.added[0].Hash() != next.Hash() {
				t.Errorf("added block = %v, want %v", bc.added[0].Hash(), next.Hash())
			}

			n.mu.RLock()
			_, known := n.peers[senderAddr.String()]
			n.mu.RUnlock()
			if known != tt.wantPeer {
				t.Errorf("sender known = %v, want %v", known, tt.wantPeer)
			}
		})
	}
}

func TestNode_AnnounceBlock(t *testing.T) {
	genesis := block.NewBlock(common.Address{}, nil, 0, 25, nil)
	genesis.SetProof("genesis")
	n, conn := runningNode(t, newFakeChain(genesis))
	n.peers[senderAddr.String()] = p2p.NewPeer(senderAddr, version, pec256.PubKey{}, uint64(time.Now().Unix()))

	if err := n.AnnounceBlock(genesis); err != nil {
		t.Fatalf("AnnounceBlock() error = %v", err)
	}

	packets := conn.packets()
	if len(packets) != 2 {
		t.Fatalf("len(packets) = %d, want 2", len(packets))
	}
	for _, p := range packets {
		if p.msg.Type != BLOCK {
			t.Errorf("packet type = %v, want %v", p.msg.Type, BLOCK)
		}
		blk, err := block.Deserialize(p.msg.Data)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		if blk.Hash() != genesis.Hash() {
			t.Errorf("announced block = %v, want %v", blk.Hash(), genesis.Hash())
		}
	}
}
