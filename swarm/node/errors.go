package node

import (
	"fmt"
	"peerchat/datamodel/peer"
)

// BindError means the inbound endpoint could not be bound. The node cannot start.
type BindError struct {
	Addr peer.Address
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// TransportError means an outbound round trip failed to connect, send or receive.
type TransportError struct {
	Peer peer.Address
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("peer %s unreachable: %v", e.Peer, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectedError means the peer answered with an error status.
type RejectedError struct {
	Peer   peer.Address
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("peer %s rejected the request: %s", e.Peer, e.Detail)
}
