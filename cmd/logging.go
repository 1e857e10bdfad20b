package cmd

import (
	"github.com/Carmen-Shannon/oxy-raymarch/config"
	"github.com/Carmen-Shannon/oxy-raymarch/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxy-raymarch")

func setupLogging(ctx *cli.Context, cfg config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warning(err)
	}
	if ctx.GlobalBool("v") {
		level = log.Debug
	}
	log.SetLevel(level)
}
