package peer

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("peer not found")
var ErrInvalidAddress = errors.New("invalid peer address")

// Address identifies a node on the network. Two addresses are equal when both fields match.
type Address struct {
	IP   string `cbor:"1,keyasint,omitempty"` // Host or IP address
	Port int    `cbor:"2,keyasint,omitempty"` // TCP port of the request endpoint
}

func (a Address) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// Validate checks that the address can be dialed.
func (a Address) Validate() error {
	if strings.TrimSpace(a.IP) == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidAddress, a.Port)
	}
	return nil
}

// ParseAddress parses a "host:port" string.
func ParseAddress(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(s))
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Address{}, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, portStr)
	}
	a := Address{IP: host, Port: port}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Entry is a named address in a Directory.
type Entry struct {
	Name    string  `cbor:"1,keyasint,omitempty"`
	Address Address `cbor:"2,keyasint,omitempty"`
}

// Directory defines the interface of an address book resolving human-readable names to addresses.
type Directory interface {
	// Put stores or replaces the address for a name.
	Put(name string, addr Address) error

	// Get returns the address stored for a name, or ErrNotFound.
	Get(name string) (*Address, error)

	// Enumerate returns all entries ordered by name.
	Enumerate() ([]*Entry, error)
}
