// Package checkpoint saves and restores model parameters in a compact
// binary format:
//
//	[4 bytes: magic "CHK1"]
//	[4 bytes: version (uint32 LE)]
//	[32 bytes: SHA-256 of header + tensor data]
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON metadata]
//	[tensor data: float64 LE, in header order]
//
// Parameters are matched by name on load, so a checkpoint restores into
// any model built with the same layer names.
package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chalk-ml/chalk/internal/nn"
)

const (
	magic   = "CHK1"
	version = 1
)

// Common errors.
var (
	ErrBadMagic         = errors.New("not a checkpoint file")
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrVersion          = errors.New("unsupported checkpoint version")
)

// Meta carries training state alongside the weights.
type Meta struct {
	Model     string    `json:"model"`
	Epoch     int       `json:"epoch"`
	Loss      float64   `json:"loss"`
	CreatedAt time.Time `json:"created_at"`
}

// header is the JSON section of a checkpoint file.
type header struct {
	Version int          `json:"version"`
	Meta    Meta         `json:"meta"`
	Tensors []tensorMeta `json:"tensors"`
}

// tensorMeta describes one parameter in the data section.
type tensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// Save writes the parameters and metadata to path.
func Save(path string, params []*nn.Parameter, meta Meta) error {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	hdr := header{Version: version, Meta: meta}
	var offset int64
	for _, p := range params {
		size := int64(p.Data.NumElements() * 8)
		hdr.Tensors = append(hdr.Tensors, tensorMeta{
			Name:   p.Name(),
			Shape:  []int(p.Data.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	var payload bytes.Buffer
	payload.Write(headerJSON)
	for _, p := range params {
		for _, v := range p.Data.Data() {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			payload.Write(buf[:])
		}
	}
	sum := sha256.Sum256(payload.Bytes())

	var out bytes.Buffer
	out.WriteString(magic)
	binary.Write(&out, binary.LittleEndian, uint32(version))
	out.Write(sum[:])
	binary.Write(&out, binary.LittleEndian, uint64(len(headerJSON)))
	out.Write(payload.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint at path into params, matching by parameter
// name, and returns the stored metadata. Every parameter must be present
// in the file with a matching shape; extra tensors in the file are an
// error too, to catch saving/loading mismatched models.
func Load(path string, params []*nn.Parameter) (Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}

	prefix := len(magic) + 4 + sha256.Size + 8
	if len(raw) < prefix || string(raw[:len(magic)]) != magic {
		return Meta{}, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint32(raw[len(magic):]); v != version {
		return Meta{}, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	var stored [sha256.Size]byte
	copy(stored[:], raw[len(magic)+4:])
	payload := raw[prefix:]
	if sha256.Sum256(payload) != stored {
		return Meta{}, ErrChecksumMismatch
	}

	headerSize := binary.LittleEndian.Uint64(raw[len(magic)+4+sha256.Size:])
	if headerSize > uint64(len(payload)) {
		return Meta{}, fmt.Errorf("header size %d exceeds file", headerSize)
	}
	var hdr header
	if err := json.Unmarshal(payload[:headerSize], &hdr); err != nil {
		return Meta{}, fmt.Errorf("parse header: %w", err)
	}
	data := payload[headerSize:]

	byName := make(map[string]tensorMeta, len(hdr.Tensors))
	for _, tm := range hdr.Tensors {
		byName[tm.Name] = tm
	}
	if len(byName) != len(params) {
		return Meta{}, fmt.Errorf("checkpoint has %d tensors, model has %d parameters",
			len(byName), len(params))
	}

	for _, p := range params {
		tm, ok := byName[p.Name()]
		if !ok {
			return Meta{}, fmt.Errorf("parameter %s missing from checkpoint", p.Name())
		}
		if !p.Data.Shape().Equal(tm.Shape) {
			return Meta{}, fmt.Errorf("parameter %s: checkpoint shape %v, model shape %v",
				p.Name(), tm.Shape, p.Data.Shape())
		}
		if tm.Offset < 0 || tm.Offset+tm.Size > int64(len(data)) {
			return Meta{}, fmt.Errorf("parameter %s extends beyond data section", p.Name())
		}

		dst := p.Data.Data()
		for i := range dst {
			bits := binary.LittleEndian.Uint64(data[tm.Offset+int64(i*8):])
			dst[i] = math.Float64frombits(bits)
		}
	}
	return hdr.Meta, nil
}
