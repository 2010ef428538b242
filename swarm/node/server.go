package node

import (
	"context"
	"errors"
	"fmt"
	"peerchat/net/reqrep"
	"peerchat/swarm/protocol"

	log "github.com/sirupsen/logrus"
)

var _ reqrep.Handler = (*Server)(nil)

// Server answers inbound requests on behalf of a Node.
type Server struct {
	node *Node
}

// ServeRoundTrip decodes one request and produces its reply. Every failure is contained:
// the caller still gets an error reply and the listener keeps running.
func (s *Server) ServeRoundTrip(ctx context.Context, rt *reqrep.RoundTrip) (any, error) {
	req := &protocol.Request{}
	if err := rt.Decode(req); err != nil {
		return protocol.Failure(protocol.DetailMalformedRequest), fmt.Errorf("failed to decode request from %s: %w", rt.Remote, err)
	}

	msg, err := protocol.Decode(req)
	if err != nil {
		var perr *protocol.Error
		if errors.As(err, &perr) {
			return protocol.Failure(perr.Detail), err
		}
		return protocol.Failure(protocol.DetailMalformedRequest), err
	}

	switch m := msg.(type) {
	case *protocol.Register:
		rt.AfterReply(func() { s.node.observer.PeerRegistered(m.Sender()) })
		return s.Register(m), nil
	case *protocol.Chat:
		return s.Chat(m), nil
	default:
		return protocol.Failure(protocol.DetailUnknownRequest), fmt.Errorf("no handler for %q", msg.Kind())
	}
}

// Handler: register. The observer is notified by ServeRoundTrip once the reply is out.
func (s *Server) Register(m *protocol.Register) *protocol.Reply {
	sender := m.Sender()
	added := s.node.peers.Add(sender)
	log.Infof("Server.Register from %s (new: %t)", sender, added)

	return protocol.Success(protocol.DetailRegistered)
}

// Handler: message
func (s *Server) Chat(m *protocol.Chat) *protocol.Reply {
	log.Debugf("Server.Chat from %s, %d bytes", m.Sender(), len(m.Text))

	s.node.observer.MessageReceived(m.Sender(), m.Text)

	return protocol.Success(protocol.DetailMessageReceived)
}
