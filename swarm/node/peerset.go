package node

import (
	"peerchat/datamodel/peer"
	"sort"
	"sync"
)

// PeerSet is the set of peers this node registered with or was registered by.
// Entries are never removed: there is no leave or expiry protocol.
type PeerSet struct {
	mu    sync.Mutex
	peers map[peer.Address]struct{}
}

func NewPeerSet() *PeerSet {
	return &PeerSet{
		peers: make(map[peer.Address]struct{}),
	}
}

// Add inserts addr and reports whether it was not already present.
func (p *PeerSet) Add(addr peer.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.peers[addr]; ok {
		return false
	}
	p.peers[addr] = struct{}{}
	return true
}

func (p *PeerSet) Contains(addr peer.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.peers[addr]
	return ok
}

func (p *PeerSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.peers)
}

// Snapshot returns a copy of the set ordered by IP, then port.
func (p *PeerSet) Snapshot() []peer.Address {
	p.mu.Lock()
	peers := make([]peer.Address, 0, len(p.peers))
	for addr := range p.peers {
		peers = append(peers, addr)
	}
	p.mu.Unlock()

	sort.Slice(peers, func(i, j int) bool {
		if peers[i].IP != peers[j].IP {
			return peers[i].IP < peers[j].IP
		}
		return peers[i].Port < peers[j].Port
	})
	return peers
}
