package commands

import (
	"context"
	"fmt"
	"peerchat/config"
	"peerchat/swarm/node"
)

func RunInfo(ctx context.Context, cfg *config.Config) {
	ip := cfg.Network.ListenIP
	if ip == "" {
		ip = node.ResolveLocalAddress(cfg.Network.ProbeAddress)
	}
	fmt.Printf("Local address: %s (probe: %s)\n", ip, cfg.Network.ProbeAddress)

	if cfg.Network.Port != 0 {
		fmt.Printf("Port: %d (fixed)\n", cfg.Network.Port)
	} else {
		fmt.Printf("Port: assigned by the OS at startup\n")
	}
	fmt.Printf("Codec: %s, request timeout: %v, call timeout: %v\n",
		cfg.Network.Codec, cfg.Network.RequestTimeout.Duration, cfg.Network.CallTimeout.Duration)

	dir, closeDir, err := openDirectory(cfg)
	if err != nil {
		log.Errorf("Failed to open directory: %v", err)
		return
	}
	defer closeDir()

	entries, err := dir.Enumerate()
	if err != nil {
		log.Errorf("Failed to enumerate directory: %v", err)
		return
	}
	fmt.Printf("Directory: %d contacts known\n", len(entries))
	for _, e := range entries {
		fmt.Printf("Contact: %s, addr: %s\n", e.Name, e.Address)
	}
}
