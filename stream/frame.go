package stream

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/matt-g-everett/fluidtx/tween"
)

const frameHeaderLen = 4 + 8 + 8 + 2

var errShortFrame = errors.New("frame: short buffer")

// Frame is one animation step as streamed to subscribers.
type Frame struct {
	Seq   uint32
	State tween.State
	Path  string
}

// MarshalBinary converts a Frame into binary data: little endian sequence
// number, percent, fluctuation, then the length-prefixed path description.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if len(f.Path) > math.MaxUint16 {
		return nil, errors.New("frame: path description too long")
	}

	data = make([]byte, frameHeaderLen, frameHeaderLen+len(f.Path))
	binary.LittleEndian.PutUint32(data[0:], f.Seq)
	binary.LittleEndian.PutUint64(data[4:], math.Float64bits(f.State.Percent))
	binary.LittleEndian.PutUint64(data[12:], math.Float64bits(f.State.Fluctuation))
	binary.LittleEndian.PutUint16(data[20:], uint16(len(f.Path)))
	data = append(data, f.Path...)

	return data, nil
}

// UnmarshalBinary decodes data written by MarshalBinary.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < frameHeaderLen {
		return errShortFrame
	}

	n := int(binary.LittleEndian.Uint16(data[20:]))
	if len(data) < frameHeaderLen+n {
		return errShortFrame
	}

	f.Seq = binary.LittleEndian.Uint32(data[0:])
	f.State.Percent = math.Float64frombits(binary.LittleEndian.Uint64(data[4:]))
	f.State.Fluctuation = math.Float64frombits(binary.LittleEndian.Uint64(data[12:]))
	f.Path = string(data[frameHeaderLen : frameHeaderLen+n])
	return nil
}
