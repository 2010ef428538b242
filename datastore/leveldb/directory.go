package leveldb

import (
	"peerchat/datamodel/peer"

	"github.com/fxamacker/cbor/v2"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	log "github.com/sirupsen/logrus"
)

const (
	keyPrefixPeer = "PEER" // Directory entry indexed by name. Followed by the name itself
)

var _ peer.Directory = (*Directory)(nil)

type Directory struct {
	LevelDB
}

func keyFromName(name string) []byte {
	return append([]byte(keyPrefixPeer), []byte(name)...)
}

func NewDirectory(path string) (*Directory, error) {
	// Init the underlying LevelDB object
	ldb, err := initLevelDb(path)
	if err != nil {
		return nil, err
	}

	return &Directory{
		LevelDB: LevelDB{
			path: path,
			db:   ldb,
		},
	}, nil
}

func (l *Directory) Put(name string, addr peer.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := cbor.Marshal(&peer.Entry{Name: name, Address: addr})
	if err != nil {
		return err
	}

	return l.db.Put(keyFromName(name), raw, nil)
}

func (l *Directory) Get(name string) (*peer.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.db.Get(keyFromName(name), nil)
	if err == errors.ErrNotFound {
		return nil, peer.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	entry := &peer.Entry{}
	if err := cbor.Unmarshal(raw, entry); err != nil {
		return nil, err
	}

	// Compare the name just in case
	if entry.Name != name {
		log.Errorf("Get: name mismatch: %q != %q", name, entry.Name)
		return nil, ErrCorrupted
	}

	return &entry.Address, nil
}

// Enumerate returns entries in key order, which is name order.
func (l *Directory) Enumerate() ([]*peer.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var results []*peer.Entry

	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefixPeer)), nil)
	defer iter.Release()

	for iter.Next() {
		entry := &peer.Entry{}
		if err := cbor.Unmarshal(iter.Value(), entry); err != nil {
			return nil, err
		}
		results = append(results, entry)
	}

	if err := iter.Error(); err != nil {
		return nil, err
	}

	return results, nil
}
