package p2p

import (
	"net"

	pec256 "github.com/polarysfoundation/pec-256"
	"github.com/polarysfoundation/polarys-bio/modules/common"
	"github.com/polarysfoundation/polarys-bio/modules/crypto"
)

// Peer is a remote node known by its UDP address. The public key is learned
// from the first signed message it sends.
type Peer struct {
	id       []byte
	addr     *net.UDPAddr
	version  uint32
	pubKey   pec256.PubKey
	lastSeen uint64
	trusted  bool
}

func NewPeer(addr *net.UDPAddr, version uint32, pubKey pec256.PubKey, lastSeen uint64) *Peer {
	return &Peer{
		id:       crypto.Pm256(pubKey.Bytes()),
		addr:     addr,
		version:  version,
		pubKey:   pubKey,
		lastSeen: lastSeen,
	}
}

// NewTrustedPeer is a bootstrap peer. Trusted peers are never pruned.
func NewTrustedPeer(addr *net.UDPAddr, version uint32, lastSeen uint64) *Peer {
	return &Peer{
		addr:     addr,
		version:  version,
		lastSeen: lastSeen,
		trusted:  true,
	}
}

func (p *Peer) ID() []byte {
	return p.id
}

func (p *Peer) CXID() string {
	if len(p.id) == 0 {
		return p.addr.String()
	}
	return common.EncodeToCXID(p.id)
}

func (p *Peer) Addr() *net.UDPAddr {
	return p.addr
}

func (p *Peer) Version() uint32 {
	return p.version
}

func (p *Peer) PubKey() pec256.PubKey {
	return p.pubKey
}

func (p *Peer) SetPubKey(pubKey pec256.PubKey) {
	p.pubKey = pubKey
	p.id = crypto.Pm256(pubKey.Bytes())
}

func (p *Peer) Trusted() bool {
	return p.trusted
}

func (p *Peer) LastSeen() uint64 {
	return p.lastSeen
}

func (p *Peer) SetLastSeen(lastSeen uint64) {
	p.lastSeen = lastSeen
}
