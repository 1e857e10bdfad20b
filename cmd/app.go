package cmd

import (
	"github.com/urfave/cli"
)

// NewApp assembles the command line interface. The view command runs when no command is given,
// so its flags are accepted before any command name as well.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "oxy-raymarch"
	app.Usage = "interactive WebGPU ray marcher"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a YAML file",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "log frame rate and memory statistics every second",
		},
	}
	app.Flags = append(app.Flags, viewFlags()...)
	app.Action = View
	app.Commands = []cli.Command{
		{
			Name:  "view",
			Usage: "open the viewer window",
			Description: `
Open a window and ray march the scene. The built-in face is drawn unless model
files are given in the config file or with --model.

Keys: W/S pitch, A/D yaw, Q/E roll, Up/Home forward, Down/PageUp back,
P animation, G geodesic travel, L real light, 1-4 scene type,
Z/X/C no/direct/soft shadow, -/= fov, R reset, Esc quit.
Drag with the left button to look around; scroll to zoom.`,
			Flags:  viewFlags(),
			Action: View,
		},
		{
			Name:      "export-model",
			Usage:     "write a model definition as YAML",
			ArgsUsage: "[model.yaml]",
			Description: `
Write the built-in face, or the model read from the given file, as a YAML
model definition that the view command can load.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write to this file instead of stdout",
				},
			},
			Action: ExportModel,
		},
		{
			Name:      "dump-buffers",
			Usage:     "print the vertex buffers uploaded for a model",
			ArgsUsage: "[model.yaml]",
			Action:    DumpBuffers,
		},
	}
	return app
}

// viewFlags builds the view flags. The slice flag holds its values in the flag itself,
// so every app gets fresh flags.
func viewFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Usage: "initial window width",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "initial window height",
		},
		cli.StringFlag{
			Name:  "present-mode",
			Usage: "vsync or uncapped",
		},
		cli.IntFlag{
			Name:  "msaa",
			Usage: "sample count, 1 or 4",
		},
		cli.BoolFlag{
			Name:  "software",
			Usage: "force the fallback (software) adapter",
		},
		cli.IntFlag{
			Name:  "type",
			Usage: "initial scene type, 1-4",
		},
		cli.StringSliceFlag{
			Name:  "model, m",
			Value: &cli.StringSlice{},
			Usage: "load a YAML model definition; may be repeated",
		},
	}
}
