package cmd

import (
	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/config"
	"github.com/urfave/cli"
)

// loadConfig reads the --config file (or the defaults) and applies command line overrides.
// View flags may come before or after the view command; the one after wins.
// Flags left at their zero value keep the file's setting.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	if ctx.GlobalBool("profile") {
		cfg.Profiling = true
	}
	cfg.Window.Width = common.Coalesce(ctx.Int("width"), ctx.GlobalInt("width"), cfg.Window.Width)
	cfg.Window.Height = common.Coalesce(ctx.Int("height"), ctx.GlobalInt("height"), cfg.Window.Height)
	cfg.Renderer.PresentMode = common.Coalesce(ctx.String("present-mode"), ctx.GlobalString("present-mode"), cfg.Renderer.PresentMode)
	cfg.Renderer.MSAA = common.Coalesce(ctx.Int("msaa"), ctx.GlobalInt("msaa"), cfg.Renderer.MSAA)
	cfg.View.Type = common.Coalesce(ctx.Int("type"), ctx.GlobalInt("type"), cfg.View.Type)
	if ctx.Bool("software") || ctx.GlobalBool("software") {
		cfg.Renderer.Software = true
	}
	models := ctx.StringSlice("model")
	if len(models) == 0 {
		models = ctx.GlobalStringSlice("model")
	}
	if len(models) > 0 {
		cfg.Models = append([]string(nil), models...)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
