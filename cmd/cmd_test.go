package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/config"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/loader"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/urfave/cli"
)

// runWithConfigCapture replaces the view action so the parsed config can be inspected
// without opening a window.
func runWithConfigCapture(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var (
		cfg    config.Config
		cfgErr error
	)
	capture := func(ctx *cli.Context) error {
		cfg, cfgErr = loadConfig(ctx)
		return nil
	}

	app := NewApp()
	app.Action = capture
	for i := range app.Commands {
		if app.Commands[i].Name == "view" {
			app.Commands[i].Action = capture
		}
	}
	if err := app.Run(append([]string{"oxy-raymarch"}, args...)); err != nil {
		t.Fatalf("unexpected app error: %v", err)
	}
	return cfg, cfgErr
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := runWithConfigCapture(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Fatalf("expected the defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	content := "window:\n  width: 800\n  height: 600\nview:\n  type: 2\nmodels: [from_file.yaml]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	type spec struct {
		args      []string
		expWidth  int
		expHeight int
		expType   int
		expMSAA   int
		expModels []string
		expProf   bool
	}
	specs := []spec{
		{[]string{"-c", path, "view"}, 800, 600, 2, 1, []string{"from_file.yaml"}, false},
		{[]string{"-c", path, "--profile", "view", "--width", "1280", "--msaa", "4", "-m", "a.yaml", "-m", "b.yaml"}, 1280, 600, 2, 4, []string{"a.yaml", "b.yaml"}, true},
		{[]string{"view", "--type", "4", "--height", "480"}, 1024, 480, 4, 1, nil, false},
		{[]string{"--width", "640", "--msaa", "4", "-m", "a.yaml"}, 640, 768, 3, 4, []string{"a.yaml"}, false},
		{[]string{"-c", path, "--type", "3", "-m", "a.yaml", "view", "--type", "4"}, 800, 600, 4, 1, []string{"a.yaml"}, false},
	}

	for index, s := range specs {
		cfg, err := runWithConfigCapture(t, s.args...)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if cfg.Window.Width != s.expWidth || cfg.Window.Height != s.expHeight {
			t.Fatalf("[spec %d] expected %dx%d, got %dx%d", index, s.expWidth, s.expHeight, cfg.Window.Width, cfg.Window.Height)
		}
		if cfg.View.Type != s.expType || cfg.Renderer.MSAA != s.expMSAA || cfg.Profiling != s.expProf {
			t.Fatalf("[spec %d] unexpected config %+v", index, cfg)
		}
		if !reflect.DeepEqual(cfg.Models, s.expModels) {
			t.Fatalf("[spec %d] expected models %v, got %v", index, s.expModels, cfg.Models)
		}
	}
}

func TestLoadConfigRejectsInvalidOverrides(t *testing.T) {
	specs := [][]string{
		{"view", "--msaa", "2"},
		{"view", "--type", "9"},
		{"view", "--present-mode", "mailbox"},
		{"-c", filepath.Join(t.TempDir(), "missing.yaml")},
	}
	for index, args := range specs {
		if _, err := runWithConfigCapture(t, args...); err == nil {
			t.Fatalf("[spec %d] expected an error for %v", index, args)
		}
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	err := app.Run(append([]string{"oxy-raymarch"}, args...))
	return out.String(), err
}

func TestExportModelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exported := filepath.Join(dir, "face.yaml")

	if _, err := runApp(t, "export-model", "-o", exported); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := loader.NewLoader(loader.BackendTypeYAML).Load(exported)
	if err != nil {
		t.Fatalf("failed to load the exported model: %v", err)
	}
	if m.Name() != model.PyramidName || !reflect.DeepEqual(m.Triangles(), model.NewPyramid().Triangles()) {
		t.Fatalf("expected the export to reproduce the built-in face, got %q %v", m.Name(), m.Triangles())
	}

	out, err := runApp(t, "export-model", exported)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "name: "+model.PyramidName) {
		t.Fatalf("expected the model on stdout, got:\n%s", out)
	}

	if _, err := runApp(t, "export-model", exported, exported); err == nil {
		t.Fatalf("expected an error for two model arguments")
	}
}

func TestDumpBuffers(t *testing.T) {
	out, err := runApp(t, "dump-buffers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, exp := range []string{
		`model "simple": 2 triangles, 6 vertices`,
		"slot 0: 72 bytes",
		"slot 1: 72 bytes",
		"a_Vertex:\n    0: [1, 1, 0]\n    1: [-1, -1, 0]",
		"a_Color:\n    0: [0, 0, 1]",
	} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q, got:\n%s", exp, out)
		}
	}
}

func TestDumpBuffersEmptyModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0o644); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}
	out, err := runApp(t, "dump-buffers", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `model "empty": 0 triangles, 0 vertices`) || strings.Contains(out, "slot 0") {
		t.Fatalf("expected no buffers for an empty model, got:\n%s", out)
	}
}

func TestLoadModelsDefaultsToPyramid(t *testing.T) {
	models, err := loadModels(nil)
	if err != nil || len(models) != 1 || models[0].Name() != model.PyramidName {
		t.Fatalf("expected the built-in face, got %v, %v", models, err)
	}
}

func TestSceneOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	options, err := sceneOptionsFromConfig(cfg)
	if err != nil || len(options) != 1 {
		t.Fatalf("expected only the state option, got %d options, %v", len(options), err)
	}

	cfg.Shaders.Fragment = filepath.Join(t.TempDir(), "missing.wgsl")
	if _, err := sceneOptionsFromConfig(cfg); err == nil {
		t.Fatalf("expected an error for a missing fragment shader")
	}
}
