package renderer

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/bind_group_provider"
)

func TestParsePresentMode(t *testing.T) {
	type spec struct {
		name   string
		exp    PresentMode
		expErr bool
	}
	specs := []spec{
		{"", PresentModeVSync, false},
		{"vsync", PresentModeVSync, false},
		{"VSync", PresentModeVSync, false},
		{"uncapped", PresentModeUncapped, false},
		{"mailbox", PresentModeVSync, true},
	}

	for index, s := range specs {
		got, err := ParsePresentMode(s.name)
		if (err != nil) != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestParseMSAA(t *testing.T) {
	type spec struct {
		count  int
		exp    MSAASampleCount
		expErr bool
	}
	specs := []spec{
		{0, MSAAOff, false},
		{1, MSAAOff, false},
		{4, MSAA4x, false},
		{2, MSAAOff, true},
		{8, MSAAOff, true},
	}

	for index, s := range specs {
		got, err := ParseMSAA(s.count)
		if (err != nil) != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %d; got %d", index, s.exp, got)
		}
	}
}

func TestBuilderOptions(t *testing.T) {
	r := &renderer{}
	for _, opt := range []RendererBuilderOption{
		WithPresentMode(PresentModeUncapped),
		WithMSAA(MSAA4x),
		WithForceSoftwareRenderer(true),
		WithClearColor(0.2, 0.3, 0.4),
	} {
		opt(r)
	}

	if r.presentMode != PresentModeUncapped || r.msaa != MSAA4x || !r.forceFallbackAdapter {
		t.Fatalf("expected options to apply; got %+v", r)
	}
	if r.clearColor != [3]float64{0.2, 0.3, 0.4} {
		t.Fatalf("unexpected clear color %v", r.clearColor)
	}
}

func TestInitVertexBuffersRejectsEmptyStream(t *testing.T) {
	type spec struct {
		streams [][]byte
		expSlot string
	}
	full := make([]byte, 72)
	specs := []spec{
		{[][]byte{{}, full}, "vertex stream 0 is empty"},
		{[][]byte{full, nil}, "vertex stream 1 is empty"},
	}

	// the check runs before the backend is touched
	r := &renderer{}
	for index, s := range specs {
		provider := bind_group_provider.NewBindGroupProvider("mesh")
		err := r.InitVertexBuffers(provider, s.streams, 6)
		if err == nil || !strings.Contains(err.Error(), s.expSlot) {
			t.Fatalf("[spec %d] expected %q; got %v", index, s.expSlot, err)
		}
		if provider.VertexCount() != 0 {
			t.Fatalf("[spec %d] expected the provider to stay empty; got %d vertices", index, provider.VertexCount())
		}
	}
}
