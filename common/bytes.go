package common

import (
	"encoding/binary"
	"math"
)

// Float32sToBytes encodes a float32 slice as little-endian bytes for GPU buffer uploads.
// The result is a copy; later changes to data are not reflected in it.
//
// Parameters:
//   - data: source values
//
// Returns:
//   - []byte: 4*len(data) bytes, or nil if data is empty
func Float32sToBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// PutFloat32 writes v at offset in buf using little-endian byte order.
func PutFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

// PutInt32 writes v at offset in buf using little-endian byte order.
func PutInt32(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}
