package node

import (
	"net"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultProbeAddress = "8.8.8.8:80"
	loopbackAddress     = "127.0.0.1"
)

// ResolveLocalAddress returns the address of the interface that routes towards probe.
// Connecting a UDP socket sends no packets, it only selects a route. Any failure falls back
// to the loopback address.
func ResolveLocalAddress(probe string) string {
	if probe == "" {
		probe = DefaultProbeAddress
	}

	conn, err := net.Dial("udp4", probe)
	if err != nil {
		log.Debugf("ResolveLocalAddress: probe %s failed, using %s: %v", probe, loopbackAddress, err)
		return loopbackAddress
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		log.Debugf("ResolveLocalAddress: no usable local address for probe %s, using %s", probe, loopbackAddress)
		return loopbackAddress
	}

	return addr.IP.String()
}

// ReserveEphemeralPort asks the OS for a free TCP port on ip and releases it right away.
// Another process may grab the port before it is bound again.
func ReserveEphemeralPort(ip string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(ip, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
