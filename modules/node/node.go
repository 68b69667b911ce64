package node

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/core/block"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
	"github.com/polarysfoundation/polarys-bio/modules/p2p"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/sirupsen/logrus"
)

type Chain interface {
	ChainID() uint64
	AddRemoteBlock(ctx context.Context, blk *block.Block) error
	HasBlock(hash common.Hash) bool
	GetBlockByHash(hash common.Hash) (*block.Block, error)
}

const (
	version = uint32(0x00000001)

	maxPacketSize = 64 * 1024
	pingInterval  = 5 * time.Second
	peerTimeout   = 30 * time.Second
)

var ErrNotRunning = errors.New("node is not running")

type packetWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Node gossips blocks with its peers over UDP.
type Node struct {
	listen    string
	bootstrap []string
	chainID   uint64

	privKey pec256.PrivKey
	pubKey  pec256.PubKey

	// peers is keyed by UDP address.
	peers map[string]*p2p.Peer
	conn  packetWriter

	bc  Chain
	log *logrus.Logger
	mu  sync.RWMutex
}

func NewNode(cfg *params.Config, bc Chain, log *logrus.Logger) (*Node, error) {
	priv, pub, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return &Node{
		listen:    cfg.Listen,
		bootstrap: cfg.Peers,
		chainID:   bc.ChainID(),
		privKey:   priv,
		pubKey:    pub,
		peers:     make(map[string]*p2p.Peer),
		bc:        bc,
		log:       log,
	}, nil
}

// Run serves until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", n.listen)
	if err != nil {
		return err
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()

	n.addBootstrapPeers()

	n.log.WithField("client_id", n.ID()).Infof("Listening on: %s", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go n.pingLoop(ctx)

	buf := make([]byte, maxPacketSize)
	for {
		size, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			n.log.Error(err)
			continue
		}

		msg := &Message{}
		if err := msg.Unmarshal(buf[:size]); err != nil {
			n.log.WithField("client_addr", from.String()).Warn(err)
			continue
		}

		n.handleMessage(ctx, msg, from)
	}
}

func (n *Node) ID() string {
	return common.EncodeToCXID(crypto.Pm256(n.pubKey.Bytes()))
}

func (n *Node) addBootstrapPeers() {
	now := uint64(time.Now().Unix())
	for _, p := range n.bootstrap {
		addr, err := net.ResolveUDPAddr("udp", p)
		if err != nil {
			n.log.WithField("peer", p).Warn(err)
			continue
		}

		n.mu.Lock()
		n.peers[addr.String()] = p2p.NewTrustedPeer(addr, version, now)
		n.mu.Unlock()
	}
}

// AnnounceBlock broadcasts blk to every known peer.
func (n *Node) AnnounceBlock(blk *block.Block) error {
	data, err := blk.Serialize()
	if err != nil {
		return err
	}
	return n.broadcast(BLOCK, data, nil)
}

func (n *Node) Peers() []*p2p.Peer {
	n.mu.RLock()
	defer n.mu.RUnlock()

	peers := make([]*p2p.Peer, 0, len(n.peers))
	for _, p := range n.peers {
		peers = append(peers, p)
	}
	return peers
}

func (n *Node) handleMessage(ctx context.Context, msg *Message, from *net.UDPAddr) {
	logger := n.log.WithFields(logrus.Fields{"client_addr": from.String(), "type": msg.Type})

	if err := msg.Verify(); err != nil {
		logger.Warn(err)
		return
	}
	if msg.ChainID != n.chainID {
		logger.WithField("chain_id", msg.ChainID).Warn(ErrWrongChain)
		return
	}

	n.touchPeer(from, msg.DecodePubKey())

	switch msg.Type {
	case PING:
		n.send(PONG, nil, from)
	case PONG:
	case BLOCK:
		blk, err := block.Deserialize(msg.Data)
		if err != nil {
			logger.Warn(err)
			return
		}
		if n.bc.HasBlock(blk.Hash()) {
			return
		}
		if err := n.bc.AddRemoteBlock(ctx, blk); err != nil {
			logger.WithField("hash", blk.Hash()).Warn(err)
			return
		}
		if err := n.broadcast(HASH, blk.Hash().Bytes(), from); err != nil {
			logger.Error(err)
		}
	case HASH:
		h := common.BytesToHash(msg.Data)
		if !n.bc.HasBlock(h) {
			n.send(ASK, msg.Data, from)
		}
	case ASK:
		h := common.BytesToHash(msg.Data)
		if !n.bc.HasBlock(h) {
			return
		}
		blk, err := n.bc.GetBlockByHash(h)
		if err != nil {
			logger.Error(err)
			return
		}
		data, err := blk.Serialize()
		if err != nil {
			logger.Error(err)
			return
		}
		n.send(BLOCK, data, from)
	default:
		logger.Warn("unknown message type")
	}
}

func (n *Node) touchPeer(addr *net.UDPAddr, pub pec256.PubKey) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := uint64(time.Now().Unix())
	key := addr.String()
	peer, ok := n.peers[key]
	if !ok {
		peer = p2p.NewPeer(addr, version, pub, now)
		n.peers[key] = peer
		n.log.WithField("client_id", peer.CXID()).Info("Peer connected")
		return
	}

	if peer.PubKey() != pub {
		peer.SetPubKey(pub)
	}
	peer.SetLastSeen(now)
}

func (n *Node) newSignedMessage(t Type, data []byte) ([]byte, error) {
	msg := NewMessage(t, n.chainID, data, n.pubKey)
	if err := msg.Sign(n.privKey); err != nil {
		return nil, err
	}
	return msg.Marshal()
}

func (n *Node) send(t Type, data []byte, to *net.UDPAddr) {
	b, err := n.newSignedMessage(t, data)
	if err != nil {
		n.log.Error(err)
		return
	}

	n.mu.RLock()
	conn := n.conn
	n.mu.RUnlock()
	if conn == nil {
		return
	}

	if _, err := conn.WriteToUDP(b, to); err != nil {
		n.log.WithField("client_addr", to.String()).Error(err)
	}
}

// broadcast sends to every peer except skip.
func (n *Node) broadcast(t Type, data []byte, skip *net.UDPAddr) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.conn == nil {
		return ErrNotRunning
	}

	b, err := n.newSignedMessage(t, data)
	if err != nil {
		return err
	}

	for key, peer := range n.peers {
		if skip != nil && key == skip.String() {
			continue
		}
		if _, err := n.conn.WriteToUDP(b, peer.Addr()); err != nil {
			n.log.WithField("client_id", peer.CXID()).Error(err)
		}
	}
	return nil
}

func (n *Node) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.prunePeers(now)
			if err := n.broadcast(PING, nil, nil); err != nil {
				n.log.Warn(err)
			}
		}
	}
}

// prunePeers drops untrusted peers not heard from within peerTimeout.
func (n *Node) prunePeers(now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for key, peer := range n.peers {
		if peer.Trusted() {
			continue
		}
		if now.Unix()-int64(peer.LastSeen()) > int64(peerTimeout.Seconds()) {
			n.log.WithField("client_id", peer.CXID()).Info("Peer disconnected")
			delete(n.peers, key)
		}
	}
}
