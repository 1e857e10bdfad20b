package frame

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
)

// GPUFrameUniformsSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches GPUFrameUniforms layout exactly (112 bytes, uniform address space aligned).
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformsSource string

// GPUFrameUniforms is the GPU-aligned representation of the per-frame uniform buffer.
// Matches the WGSL FrameUniforms struct layout exactly (see GPUFrameUniformsSource).
// Size: 112 bytes.
type GPUFrameUniforms struct {
	Transform  [16]float32 // offset   0: rotation matrix, column-major (mat4x4<f32>)
	RayOrigin  [3]float32  // offset  64: ray origin (vec3<f32>)
	Time       float32     // offset  76: animation clock in seconds
	Resolution [2]float32  // offset  80: surface width and height in pixels (vec2<f32>)
	Fov        float32     // offset  88: field of view scale
	RenderType int32       // offset  92: render type 1..4
	SoftShadow int32       // offset  96: 0 none, 1 direct, 2 soft
	RealLight  int32       // offset 100: 1 if the real light model is on
	RealTime   float32     // offset 104: wall clock in seconds, advances even when paused
	_pad       float32     // offset 108: padding to 112 bytes
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		common.PutFloat32(buf, i*4, g.Transform[i])
	}
	for i := range 3 {
		common.PutFloat32(buf, 64+i*4, g.RayOrigin[i])
	}
	common.PutFloat32(buf, 76, g.Time)
	common.PutFloat32(buf, 80, g.Resolution[0])
	common.PutFloat32(buf, 84, g.Resolution[1])
	common.PutFloat32(buf, 88, g.Fov)
	common.PutInt32(buf, 92, g.RenderType)
	common.PutInt32(buf, 96, g.SoftShadow)
	common.PutInt32(buf, 100, g.RealLight)
	common.PutFloat32(buf, 104, g.RealTime)
	return buf
}
