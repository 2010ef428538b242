package node

import (
	"peerchat/datamodel/peer"

	log "github.com/sirupsen/logrus"
)

// Observer receives inbound events from the listener. Calls are made from the listener
// goroutine before the reply is sent, one at a time.
type Observer interface {
	PeerRegistered(from peer.Address)
	MessageReceived(from peer.Address, text string)
}

type logObserver struct{}

func (logObserver) PeerRegistered(from peer.Address) {
	log.Infof("New peer registered: %s", from)
}

func (logObserver) MessageReceived(from peer.Address, text string) {
	log.Infof("New message from %s: %s", from, text)
}
