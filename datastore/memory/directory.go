// Package memory implements an in-memory peer.Directory
package memory

import (
	"peerchat/datamodel/peer"
	"sort"
	"sync"
)

var _ peer.Directory = (*Directory)(nil)

type Directory struct {
	mu    sync.Mutex
	peers map[string]peer.Address
}

func NewDirectory() *Directory {
	return &Directory{
		peers: make(map[string]peer.Address),
	}
}

func (d *Directory) Put(name string, addr peer.Address) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.peers[name] = addr
	return nil
}

func (d *Directory) Get(name string) (*peer.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	addr, ok := d.peers[name]
	if !ok {
		return nil, peer.ErrNotFound
	}
	return &addr, nil
}

func (d *Directory) Enumerate() ([]*peer.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]*peer.Entry, 0, len(d.peers))
	for name, addr := range d.peers {
		entries = append(entries, &peer.Entry{Name: name, Address: addr})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}
