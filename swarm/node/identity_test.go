package node

import (
	"net"
	"strconv"
	"testing"
)

func TestResolveLocalAddressFallback(t *testing.T) {
	// Missing port: the probe fails before any routing decision
	if ip := ResolveLocalAddress("not-an-address"); ip != "127.0.0.1" {
		t.Fatalf("Expected loopback fallback, got %s", ip)
	}
}

func TestResolveLocalAddressIsLocal(t *testing.T) {
	ip := ResolveLocalAddress("")
	if net.ParseIP(ip) == nil {
		t.Fatalf("Resolved address is not an IP: %q", ip)
	}

	// Whatever was picked must be bindable on this host
	l, err := net.Listen("tcp", net.JoinHostPort(ip, "0"))
	if err != nil {
		t.Fatalf("Cannot bind resolved address %s: %v", ip, err)
	}
	l.Close()
}

func TestReserveEphemeralPort(t *testing.T) {
	port, err := ReserveEphemeralPort("127.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if port <= 0 || port > 65535 {
		t.Fatalf("Unexpected port %d", port)
	}

	// The port has been released and can be bound again
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("Reserved port %d is not free: %v", port, err)
	}
	l.Close()
}
