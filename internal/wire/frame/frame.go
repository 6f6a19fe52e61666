// Package frame implements the command-frame codec: a 4-ASCII code and a
// length-prefixed payload, the unit a packet payload is split into when the
// COMMAND flag is set.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the number of bytes preceding the payload: a u16 length,
// 2 reserved bytes, and the 4-ASCII code.
const HeaderSize = 8

// ErrMalformed is returned when a frame cannot be split out of a byte slice
// because its declared length is inconsistent with the remaining bytes.
var ErrMalformed = errors.New("frame: malformed frame")

// Frame is a single command frame: a 4-character code and its payload.
type Frame struct {
	Code    string
	Payload []byte
}

// Encode renders f as wire bytes: length | reserved | code | payload.
func (f Frame) Encode() ([]byte, error) {
	if len(f.Code) != 4 {
		return nil, fmt.Errorf("frame: code %q is not 4 ASCII characters", f.Code)
	}
	length := HeaderSize + len(f.Payload)
	buf := make([]byte, length)
	binary.BigEndian.PutUint16(buf[0:2], uint16(length)) //nolint:gosec
	copy(buf[4:8], f.Code)
	copy(buf[8:], f.Payload)
	return buf, nil
}

// EncodeAll concatenates the wire encoding of every frame in order.
func EncodeAll(frames []Frame) ([]byte, error) {
	var out []byte
	for _, f := range frames {
		b, err := f.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeAll splits data into a sequence of frames. It requires that the
// frames exactly consume data with no trailing bytes; any inconsistency
// yields ErrMalformed and the caller must drop the entire packet.
func DecodeAll(data []byte) ([]Frame, error) {
	var frames []Frame
	for len(data) > 0 {
		if len(data) < HeaderSize {
			return nil, ErrMalformed
		}
		length := int(binary.BigEndian.Uint16(data[0:2]))
		if length < HeaderSize || length > len(data) {
			return nil, ErrMalformed
		}
		frames = append(frames, Frame{
			Code:    string(data[4:8]),
			Payload: append([]byte{}, data[8:length]...),
		})
		data = data[length:]
	}
	return frames, nil
}
