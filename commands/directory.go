package commands

import (
	"peerchat/config"
	"peerchat/datamodel/peer"
	"peerchat/datastore/leveldb"
	"peerchat/datastore/memory"
)

// openDirectory opens the contacts directory configured in cfg. The returned function
// releases it.
func openDirectory(cfg *config.Config) (peer.Directory, func() error, error) {
	if cfg.Directory.Path == "" {
		log.Debugf("No directory path configured, contacts are kept in memory")
		return memory.NewDirectory(), func() error { return nil }, nil
	}

	dir, err := leveldb.NewDirectory(cfg.Directory.Path)
	if err != nil {
		return nil, nil, err
	}
	return dir, dir.Close, nil
}
