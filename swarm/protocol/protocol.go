// Package protocol defines the peer wire protocol: a request is either a Register or a Chat
// message and is always answered by exactly one Reply.
package protocol

import (
	"fmt"
	"peerchat/datamodel/peer"
)

type Kind string

const (
	KindRegister Kind = "register"
	KindChat     Kind = "message"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	DetailRegistered       = "Registered successfully"
	DetailMessageReceived  = "Message received"
	DetailUnknownRequest   = "Unknown request"
	DetailMalformedRequest = "Malformed request"
)

// Message is a decoded request. It is implemented only by *Register and *Chat.
type Message interface {
	Kind() Kind
	wire() any
}

// Register announces the sender's request endpoint to the receiver.
type Register struct {
	IP   string
	Port int
}

func (m *Register) Kind() Kind { return KindRegister }

func (m *Register) Sender() peer.Address {
	return peer.Address{IP: m.IP, Port: m.Port}
}

func (m *Register) wire() any {
	return &registerWire{Type: KindRegister, IP: m.IP, Port: m.Port}
}

// Chat carries one text message.
type Chat struct {
	SenderIP   string
	SenderPort int
	Text       string
}

func (m *Chat) Kind() Kind { return KindChat }

func (m *Chat) Sender() peer.Address {
	return peer.Address{IP: m.SenderIP, Port: m.SenderPort}
}

func (m *Chat) wire() any {
	return &chatWire{Type: KindChat, Message: m.Text, SenderIP: m.SenderIP, SenderPort: m.SenderPort}
}

type registerWire struct {
	Type Kind   `json:"type" cbor:"type"`
	IP   string `json:"ip" cbor:"ip"`
	Port int    `json:"port" cbor:"port"`
}

type chatWire struct {
	Type       Kind   `json:"type" cbor:"type"`
	Message    string `json:"message" cbor:"message"`
	SenderIP   string `json:"sender_ip" cbor:"sender_ip"`
	SenderPort int    `json:"sender_port" cbor:"sender_port"`
}

// ToWire returns the encodable form of m.
func ToWire(m Message) any {
	return m.wire()
}

// Request is the union of all request fields as they appear on the wire. Pointer fields
// distinguish a missing key from a zero value.
type Request struct {
	Type       Kind    `json:"type" cbor:"type"`
	IP         *string `json:"ip,omitempty" cbor:"ip,omitempty"`
	Port       *int    `json:"port,omitempty" cbor:"port,omitempty"`
	Message    *string `json:"message,omitempty" cbor:"message,omitempty"`
	SenderIP   *string `json:"sender_ip,omitempty" cbor:"sender_ip,omitempty"`
	SenderPort *int    `json:"sender_port,omitempty" cbor:"sender_port,omitempty"`
}

// Error is a request that decoded but could not be turned into a Message.
type Error struct {
	Type   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol: %q request rejected: %s", e.Type, e.Detail)
}

func malformed(kind Kind, what string) *Error {
	return &Error{Type: kind, Detail: fmt.Sprintf("Malformed %s request: %s", kind, what)}
}

// Decode validates a wire request and returns the matching Message.
func Decode(req *Request) (Message, error) {
	switch req.Type {
	case KindRegister:
		if req.IP == nil {
			return nil, malformed(KindRegister, "missing ip")
		}
		if req.Port == nil {
			return nil, malformed(KindRegister, "missing port")
		}
		m := &Register{IP: *req.IP, Port: *req.Port}
		if err := m.Sender().Validate(); err != nil {
			return nil, malformed(KindRegister, err.Error())
		}
		return m, nil

	case KindChat:
		if req.Message == nil {
			return nil, malformed(KindChat, "missing message")
		}
		if req.SenderIP == nil {
			return nil, malformed(KindChat, "missing sender_ip")
		}
		if req.SenderPort == nil {
			return nil, malformed(KindChat, "missing sender_port")
		}
		m := &Chat{SenderIP: *req.SenderIP, SenderPort: *req.SenderPort, Text: *req.Message}
		if err := m.Sender().Validate(); err != nil {
			return nil, malformed(KindChat, err.Error())
		}
		return m, nil

	default:
		return nil, &Error{Type: req.Type, Detail: DetailUnknownRequest}
	}
}

// Reply answers every request.
type Reply struct {
	Status  Status `json:"status" cbor:"status"`
	Message string `json:"message" cbor:"message"`
}

func Success(detail string) *Reply {
	return &Reply{Status: StatusSuccess, Message: detail}
}

func Failure(detail string) *Reply {
	return &Reply{Status: StatusError, Message: detail}
}

func (r *Reply) OK() bool {
	return r.Status == StatusSuccess
}
