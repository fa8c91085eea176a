package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

const dtypeF64 = "F64"

type tensorMeta struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// writeTensor writes a safetensors container holding a single F64 tensor.
// The header is padded with spaces so the data starts 8-byte aligned.
func writeTensor(w io.Writer, name string, shape []int, data []float64) error {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("safetensors: shape %v holds %d values, got %d", shape, n, len(data))
	}

	header, err := json.Marshal(map[string]tensorMeta{
		name: {Dtype: dtypeF64, Shape: shape, DataOffsets: [2]int{0, len(data) * 8}},
	})
	if err != nil {
		return fmt.Errorf("safetensors: marshal header: %w", err)
	}
	if pad := len(header) % 8; pad != 0 {
		header = append(header, bytes.Repeat([]byte(" "), 8-pad)...)
	}

	buf := make([]byte, 8+len(header)+len(data)*8)
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(header)))
	copy(buf[8:], header)
	off := 8 + len(header)
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[off+i*8:], math.Float64bits(v))
	}
	_, err = w.Write(buf)
	return err
}

// readTensor parses a safetensors container and returns the named F64
// tensor.
func readTensor(data []byte, name string) (shape []int, values []float64, err error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("safetensors: file too small: %d bytes", len(data))
	}

	// 8-byte LE uint64 header length, then JSON.
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > uint64(len(data)-8) {
		return nil, nil, fmt.Errorf("safetensors: header length %d exceeds file size", headerLen)
	}
	body := data[8+headerLen:]

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, nil, fmt.Errorf("safetensors: failed to parse header: %w", err)
	}

	raw, ok := header[name]
	if !ok {
		return nil, nil, fmt.Errorf("safetensors: tensor %q not found in header", name)
	}

	var meta tensorMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("safetensors: failed to parse tensor metadata: %w", err)
	}
	if meta.Dtype != dtypeF64 {
		return nil, nil, fmt.Errorf("safetensors: expected dtype %s, got %s", dtypeF64, meta.Dtype)
	}

	lo, hi := meta.DataOffsets[0], meta.DataOffsets[1]
	if lo < 0 || lo > hi || hi > len(body) {
		return nil, nil, fmt.Errorf("safetensors: data range [%d:%d] outside %d data bytes", lo, hi, len(body))
	}
	if (hi-lo)%8 != 0 {
		return nil, nil, fmt.Errorf("safetensors: data size %d is not a multiple of 8", hi-lo)
	}
	numValues := (hi - lo) / 8

	// The shape product must equal numValues; stop as soon as it exceeds it.
	n := 1
	for _, d := range meta.Shape {
		if d < 0 {
			return nil, nil, fmt.Errorf("safetensors: negative dimension in shape %v", meta.Shape)
		}
		if d != 0 && n > numValues/d {
			return nil, nil, fmt.Errorf("safetensors: shape %v doesn't match data size %d", meta.Shape, hi-lo)
		}
		n *= d
	}
	if n != numValues {
		return nil, nil, fmt.Errorf("safetensors: shape %v doesn't match data size %d", meta.Shape, hi-lo)
	}

	src := body[lo:hi]
	values = make([]float64, numValues)
	for i := range values {
		bits := binary.LittleEndian.Uint64(src[i*8:])
		values[i] = math.Float64frombits(bits)
	}
	return meta.Shape, values, nil
}
