package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-raymarch/config"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/loader"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/urfave/cli"
)

// ExportModel writes the built-in face, or the model named on the command line, as YAML.
func ExportModel(ctx *cli.Context) error {
	setupLogging(ctx, config.Default())

	l := loader.NewLoader(loader.BackendTypeYAML)
	m, err := modelArg(ctx, l)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if out == "" {
		return l.Dump(ctx.App.Writer, m)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := l.Dump(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Infof("wrote %q to %s", m.Name(), out)
	return nil
}

// DumpBuffers prints the per-vertex attribute arrays the scene uploads for a model.
func DumpBuffers(ctx *cli.Context) error {
	setupLogging(ctx, config.Default())

	m, err := modelArg(ctx, loader.NewLoader(loader.BackendTypeYAML))
	if err != nil {
		return err
	}
	return writeBuffers(ctx.App.Writer, m)
}

func modelArg(ctx *cli.Context, l loader.Loader) (model.Model, error) {
	switch ctx.NArg() {
	case 0:
		return model.NewPyramid(), nil
	case 1:
		return l.Load(ctx.Args().First())
	default:
		return nil, fmt.Errorf("expected at most one model file, got %d", ctx.NArg())
	}
}

func writeBuffers(w io.Writer, m model.Model) error {
	streams := model.NewGPUVertexStreams(m)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "model %q: %d triangles, %d vertices\n", m.Name(), m.TriangleCount(), streams.VertexCount())
	for slot, buf := range streams.Marshal() {
		fmt.Fprintf(bw, "slot %d: %d bytes\n", slot, len(buf))
	}
	writeStream(bw, "a_Vertex", streams.Positions)
	writeStream(bw, "a_Color", streams.Colors)
	return bw.Flush()
}

func writeStream(w io.Writer, name string, values []float32) {
	fmt.Fprintf(w, "%s:\n", name)
	for i := 0; i+2 < len(values); i += 3 {
		fmt.Fprintf(w, "  %3d: [%g, %g, %g]\n", i/3, values[i], values[i+1], values[i+2])
	}
}
