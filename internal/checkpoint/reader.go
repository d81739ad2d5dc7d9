package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Load reads a .xnet file and reconstructs its tensors by name.
//
// The magic bytes, format version, data checksum, and every tensor's
// bounds are validated before any tensor is materialized.
func Load(path string) (map[string]*tensor.Tensor, Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	const fixedPrefix = len(MagicBytes) + 4 + 4
	if len(raw) < fixedPrefix {
		return nil, Meta{}, ErrTruncated
	}
	if string(raw[:len(MagicBytes)]) != MagicBytes {
		return nil, Meta{}, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(raw[len(MagicBytes):])
	if version != FormatVersion {
		return nil, Meta{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	headerLen := binary.LittleEndian.Uint32(raw[len(MagicBytes)+4:])
	if headerLen > maxHeaderSize {
		return nil, Meta{}, ErrHeaderTooLarge
	}
	headerEnd := fixedPrefix + int(headerLen)
	if len(raw) < headerEnd+ChecksumSize {
		return nil, Meta{}, ErrTruncated
	}

	var header Header
	if err := json.Unmarshal(raw[fixedPrefix:headerEnd], &header); err != nil {
		return nil, Meta{}, fmt.Errorf("failed to parse header: %w", err)
	}

	var stored [ChecksumSize]byte
	copy(stored[:], raw[headerEnd:headerEnd+ChecksumSize])
	data := raw[headerEnd+ChecksumSize:]
	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, Meta{}, err
	}

	state := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, tm := range header.Tensors {
		if tm.Offset < 0 || tm.Size < 0 || tm.Offset+tm.Size > int64(len(data)) {
			return nil, Meta{}, fmt.Errorf("%w: tensor %q", ErrOutOfBounds, tm.Name)
		}
		shape := tensor.Shape(tm.Shape)
		if int64(shape.NumElements()*elemSize) != tm.Size {
			return nil, Meta{}, fmt.Errorf("tensor %q: shape %v disagrees with size %d", tm.Name, shape, tm.Size)
		}

		values := make([]float64, shape.NumElements())
		payload := data[tm.Offset : tm.Offset+tm.Size]
		for i := range values {
			bits := binary.LittleEndian.Uint64(payload[i*elemSize:])
			values[i] = math.Float64frombits(bits)
		}
		t, err := tensor.FromSlice(values, shape)
		if err != nil {
			return nil, Meta{}, fmt.Errorf("tensor %q: %w", tm.Name, err)
		}
		state[tm.Name] = t
	}

	return state, header.Meta, nil
}
