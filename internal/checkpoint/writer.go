package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Save writes the named tensors and training metadata to path in .xnet
// format. Tensors are laid out in name order so identical state produces
// identical files.
func Save(path string, state map[string]*tensor.Tensor, meta Meta) error {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		EngineVersion: engineVersion,
		CreatedAt:     time.Now().UTC(),
		Meta:          meta,
		Tensors:       make([]TensorMeta, 0, len(names)),
	}

	var data bytes.Buffer
	var offset int64
	for _, name := range names {
		t := state[name]
		size := int64(t.NumElements() * elemSize)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			Shape:  []int(t.Shape()),
			Offset: offset,
			Size:   size,
		})
		for _, v := range t.Data() {
			var buf [elemSize]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			data.Write(buf[:])
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	checksum := ComputeChecksum(data.Bytes())

	var out bytes.Buffer
	out.WriteString(MagicBytes)
	if err := binary.Write(&out, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(&out, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header length: %w", err)
	}
	out.Write(headerJSON)
	out.Write(checksum[:])
	out.Write(data.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}
