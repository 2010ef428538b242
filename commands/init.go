package commands

import (
	"context"
	"peerchat/config"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

func RunInit(ctx context.Context, cfg *config.Config) {
	log.Info("RunInit()")
	if err := cfg.Save(); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}
}
