package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"peerchat/config"
	"peerchat/datamodel/peer"
)

var errUsage = errors.New("usage: contacts add NAME IP:PORT | contacts list")

func RunContacts(ctx context.Context, cfg *config.Config, args []string) {
	if err := runContacts(cfg, args, os.Stdout); err != nil {
		log.Fatalf("contacts: %v", err)
	}
}

func runContacts(cfg *config.Config, args []string, out io.Writer) error {
	if cfg.Directory.Path == "" {
		return errors.New("directory.path is not set in the config, contacts would not be kept")
	}
	if len(args) == 0 {
		return errUsage
	}

	dir, closeDir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	defer closeDir()

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		addr, err := peer.ParseAddress(args[2])
		if err != nil {
			return err
		}
		if err := dir.Put(args[1], addr); err != nil {
			return fmt.Errorf("failed to save contact: %w", err)
		}
		fmt.Fprintf(out, "Saved %s -> %s\n", args[1], addr)
		return nil

	case "list":
		entries, err := dir.Enumerate()
		if err != nil {
			return fmt.Errorf("failed to enumerate contacts: %w", err)
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Address)
		}
		return nil

	default:
		return errUsage
	}
}
