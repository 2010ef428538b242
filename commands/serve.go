package commands

import (
	"context"
	"io"
	"os"
	"peerchat/config"
	"peerchat/swarm/node"

	"golang.org/x/sync/errgroup"
)

func RunServe(ctx context.Context, cfg *config.Config) {
	if err := runServe(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Failed to run node: %v", err)
	}
}

func runServe(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	dir, closeDir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDir(); err != nil {
			log.Errorf("Failed to close directory: %v", err)
		}
	}()

	console := NewConsole(in, out, dir, cfg.Network.CallTimeout.Duration)

	n, err := node.New(cfg, console)
	if err != nil {
		return err
	}
	console.Attach(n)
	console.Welcome()

	// Leaving the console stops the listener
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg, gctx := errgroup.WithContext(cctx)

	wg.Go(func() error {
		return n.Run(gctx)
	})

	wg.Go(func() error {
		defer cancel()
		return console.Run(gctx)
	})

	return wg.Wait()
}
