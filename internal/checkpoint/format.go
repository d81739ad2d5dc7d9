// Package checkpoint saves and restores named trainable tensors in the
// .xnet binary format.
//
// File layout:
//
//	magic "XNET" (4 bytes)
//	format version (uint32, little endian)
//	header length (uint32, little endian)
//	JSON header
//	SHA-256 checksum of the data section (32 bytes)
//	data section: float64 tensor payloads, little endian
//
// The JSON header records each tensor's name, shape, offset, and size,
// plus training metadata (step, loss). Load verifies the magic bytes,
// version, checksum, and tensor bounds before materializing anything.
package checkpoint

import "time"

// Format constants.
const (
	MagicBytes    = "XNET"
	FormatVersion = 1
	ChecksumSize  = 32

	// maxHeaderSize bounds the JSON header so a corrupted length field
	// cannot drive a huge allocation.
	maxHeaderSize = 1 << 20

	elemSize = 8 // float64
)

const engineVersion = "0.1.0"

// Meta carries training state recorded alongside the tensors.
type Meta struct {
	Step int64   `json:"step"`
	Loss float64 `json:"loss"`
}

// Header is the JSON header of a .xnet file.
type Header struct {
	FormatVersion int          `json:"format_version"`
	EngineVersion string       `json:"engine_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Meta          Meta         `json:"meta"`
	Tensors       []TensorMeta `json:"tensors"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from start of data section
	Size   int64  `json:"size"`   // bytes
}
