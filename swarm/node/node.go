package node

import (
	"context"
	"errors"
	"net"
	"peerchat/config"
	"peerchat/datamodel/peer"
	"peerchat/net/reqrep"
	"peerchat/swarm/protocol"

	"golang.org/x/sync/singleflight"

	log "github.com/sirupsen/logrus"
)

type Node struct {
	// Identity, fixed for the lifetime of the node
	self peer.Address

	// Peers we registered with or were registered by
	peers *PeerSet

	// Networking
	server *reqrep.Server
	client *reqrep.Client

	// Inbound request handlers
	handlers *Server
	observer Observer

	// Collapses concurrent registrations with the same peer
	sg singleflight.Group
}

// New resolves the node identity and binds the inbound endpoint. Inbound requests are not
// served until Run is called. A nil observer logs inbound events.
func New(cfg *config.Config, observer Observer) (*Node, error) {
	codec, err := reqrep.CodecByName(cfg.Network.Codec)
	if err != nil {
		return nil, err
	}

	if observer == nil {
		observer = logObserver{}
	}

	ip := cfg.Network.ListenIP
	if ip == "" {
		ip = ResolveLocalAddress(cfg.Network.ProbeAddress)
	}

	port := cfg.Network.Port
	if port == 0 {
		port, err = ReserveEphemeralPort(ip)
		if err != nil {
			return nil, &BindError{Addr: peer.Address{IP: ip}, Err: err}
		}
	}

	self := peer.Address{IP: ip, Port: port}

	l, err := net.Listen("tcp", self.String())
	if err != nil {
		return nil, &BindError{Addr: self, Err: err}
	}

	node := &Node{
		self:     self,
		peers:    NewPeerSet(),
		client:   reqrep.NewClient(codec),
		observer: observer,
	}

	node.handlers = &Server{node: node}
	node.server = reqrep.NewServer(l, codec, node.handlers)
	node.server.SetRequestTimeout(cfg.Network.RequestTimeout.Duration)

	log.Infof("I am %s, listening on %s (codec: %s)", node.self, l.Addr(), codec.Name())

	return node, nil
}

// Self returns the address other nodes use to reach this node.
func (n *Node) Self() peer.Address {
	return n.self
}

// Run serves inbound requests until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	err := n.server.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RegisterWith announces this node to addr. On success addr joins the peer set.
//
// Concurrent calls for the same addr share one round trip, which runs under the first
// caller's ctx. Every caller stops waiting as soon as its own ctx is done.
func (n *Node) RegisterWith(ctx context.Context, addr peer.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	ch := n.sg.DoChan(addr.String(), func() (any, error) {
		msg := &protocol.Register{IP: n.self.IP, Port: n.self.Port}
		if err := n.call(ctx, addr, msg); err != nil {
			return nil, err
		}
		n.peers.Add(addr)
		return nil, nil
	})

	var err error
	select {
	case <-ctx.Done():
		err = &TransportError{Peer: addr, Err: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			log.Debugf("RegisterWith(%s): shared an in-flight registration", addr)
		}
		err = res.Err
	}
	if err != nil {
		log.Warnf("RegisterWith(%s): %v", addr, err)
		return err
	}

	log.Infof("Registered with %s", addr)
	return nil
}

// SendMessage delivers text to addr. The peer set is never modified.
func (n *Node) SendMessage(ctx context.Context, addr peer.Address, text string) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	msg := &protocol.Chat{SenderIP: n.self.IP, SenderPort: n.self.Port, Text: text}
	if err := n.call(ctx, addr, msg); err != nil {
		log.Warnf("SendMessage(%s): %v", addr, err)
		return err
	}

	log.Debugf("Message sent to %s", addr)
	return nil
}

// Peers returns a snapshot of the peer set.
func (n *Node) Peers() []peer.Address {
	return n.peers.Snapshot()
}

// call performs one round trip with addr.
func (n *Node) call(ctx context.Context, addr peer.Address, msg protocol.Message) error {
	reply := &protocol.Reply{}
	if err := n.client.Call(ctx, addr.String(), protocol.ToWire(msg), reply); err != nil {
		return &TransportError{Peer: addr, Err: err}
	}
	if !reply.OK() {
		return &RejectedError{Peer: addr, Detail: reply.Message}
	}
	return nil
}
