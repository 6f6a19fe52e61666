package command

import (
	"encoding/binary"
	"strings"

	"github.com/broadcastswitch/switcherd/internal/sourcecatalog"
	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/frame"
)

func enc(code Code, payload []byte) (frame.Frame, error) {
	return frame.Frame{Code: string(code), Payload: payload}, nil
}

// Ver announces the protocol version.
type Ver struct{}

func (c *Ver) Code() Code { return CodeVer }

func (c *Ver) Encode(_ *Context) (frame.Frame, error) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload[0:2], 2)
	binary.BigEndian.PutUint16(payload[2:4], 30)
	return enc(CodeVer, payload)
}

// Pin announces the product name.
type Pin struct {
	ProductName string
}

func (c *Pin) Code() Code { return CodePin }

func (c *Pin) Encode(_ *Context) (frame.Frame, error) {
	payload := make([]byte, 44)
	copy(payload, c.ProductName)
	return enc(CodePin, payload)
}

// InCm marks the end of the initial state dump.
type InCm struct{}

func (c *InCm) Code() Code { return CodeInCm }

func (c *InCm) Encode(_ *Context) (frame.Frame, error) {
	return enc(CodeInCm, []byte{0x01, 0x00, 0x00, 0x00})
}

// Time carries the current wall clock as hour/minute/second/frame, read at
// the moment the carrier containing it is materialized into a packet.
type Time struct{}

func (c *Time) Code() Code { return CodeTime }

func frameRate(videoMode string) float64 {
	switch {
	case strings.Contains(videoMode, "5994"):
		return 59.94
	case strings.Contains(videoMode, "2997"):
		return 29.97
	case strings.Contains(videoMode, "2398"):
		return 23.98
	case strings.Contains(videoMode, "50"):
		return 50
	case strings.Contains(videoMode, "25"):
		return 25
	case strings.Contains(videoMode, "24"):
		return 24
	default:
		return 25
	}
}

func (c *Time) Encode(ctx *Context) (frame.Frame, error) {
	t := ctx.Now
	rate := frameRate(ctx.Store.VideoMode())
	microseconds := float64(t.Nanosecond() / 1000)
	frameNum := int(microseconds / 1e6 * rate)
	payload := []byte{
		byte(t.Hour()),
		byte(t.Minute()),
		byte(t.Second()),
		byte(frameNum),
		0, 0, 0, 0,
	}
	return enc(CodeTime, payload)
}

// PrgI reports the current program source for an ME.
type PrgI struct {
	ME uint8
}

func (c *PrgI) Code() Code { return CodePrgI }

func (c *PrgI) Encode(ctx *Context) (frame.Frame, error) {
	payload := make([]byte, 4)
	payload[0] = c.ME
	binary.BigEndian.PutUint16(payload[2:4], uint16(ctx.Store.ProgramInput(int(c.ME)))) //nolint:gosec
	return enc(CodePrgI, payload)
}

// PrvI reports the current preview source for an ME.
type PrvI struct {
	ME uint8
}

func (c *PrvI) Code() Code { return CodePrvI }

func (c *PrvI) Encode(ctx *Context) (frame.Frame, error) {
	payload := make([]byte, 8)
	payload[0] = c.ME
	binary.BigEndian.PutUint16(payload[2:4], uint16(ctx.Store.PreviewInput(int(c.ME)))) //nolint:gosec
	return enc(CodePrvI, payload)
}

// TrPs reports transition progress for an ME and records the new position
// back into the state store as its documented side effect.
type TrPs struct {
	ME              uint8
	FramesRemaining int
	Total           int
}

func (c *TrPs) Code() Code { return CodeTrPs }

func (c *TrPs) Encode(ctx *Context) (frame.Frame, error) {
	total := c.Total
	if total <= 0 {
		total = 1
	}
	remaining := c.FramesRemaining
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 255 {
		remaining = 255
	}
	position := 10000 - (remaining*10000)/total
	inTransition := byte(1)
	if c.FramesRemaining == c.Total {
		inTransition = 0
	}

	ctx.Store.SetTransitionPosition(int(c.ME), position)

	payload := make([]byte, 8)
	payload[0] = c.ME
	payload[1] = inTransition
	payload[2] = byte(remaining)
	// payload[3] reserved
	binary.BigEndian.PutUint16(payload[4:6], uint16(position)) //nolint:gosec
	// payload[6:8] reserved
	return enc(CodeTrPs, payload)
}

// TlIn reports tally state by input index for an ME.
type TlIn struct {
	ME uint8
}

func (c *TlIn) Code() Code { return CodeTlIn }

func (c *TlIn) Encode(ctx *Context) (frame.Frame, error) {
	ids := ctx.Store.InputIDs()
	program := ctx.Store.ProgramInput(int(c.ME))
	preview := ctx.Store.PreviewInput(int(c.ME))
	midTransition := inMidTransition(ctx.Store, int(c.ME))

	payload := make([]byte, 2+len(ids))
	binary.BigEndian.PutUint16(payload[0:2], uint16(len(ids))) //nolint:gosec
	for i, id := range ids {
		payload[2+i] = tallyFlags(id, program, preview, midTransition)
	}
	return enc(CodeTlIn, payload)
}

// TlSr reports tally state by source id for an ME, over the product's
// source catalog.
type TlSr struct {
	ME      uint8
	Product string
}

func (c *TlSr) Code() Code { return CodeTlSr }

func (c *TlSr) Encode(ctx *Context) (frame.Frame, error) {
	sources := sourcecatalog.ForProduct(c.Product)
	program := ctx.Store.ProgramInput(int(c.ME))
	preview := ctx.Store.PreviewInput(int(c.ME))
	midTransition := inMidTransition(ctx.Store, int(c.ME))

	payload := make([]byte, 2+len(sources)*3+2)
	binary.BigEndian.PutUint16(payload[0:2], uint16(len(sources))) //nolint:gosec
	off := 2
	for _, src := range sources {
		binary.BigEndian.PutUint16(payload[off:off+2], uint16(src)) //nolint:gosec
		payload[off+2] = tallyFlags(src, program, preview, midTransition)
		off += 3
	}
	// trailing 2 reserved bytes already zero
	return enc(CodeTlSr, payload)
}

func inMidTransition(s *state.Store, me int) bool {
	pos := s.TransitionPosition(me)
	return pos > 0 && pos < 10000
}

func tallyFlags(id, program, preview int, midTransition bool) byte {
	var flags byte
	if id == program {
		flags |= 0x01
	}
	if id == preview {
		flags |= 0x02
		if midTransition {
			flags |= 0x01
		}
	}
	return flags
}
