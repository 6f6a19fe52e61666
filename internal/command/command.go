// Package command implements the command registry: tagged variants for
// every recognized 4-ASCII code plus an opaque fallback for unrecognized
// ones, and the response planner that turns an inbound command into a
// scheduled sequence of outbound carriers.
package command

import (
	"errors"
	"time"

	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/frame"
)

// Code is a 4-ASCII command code, the wire tag and in-memory discriminator
// for a command variant.
type Code string

const (
	CodeDAut Code = "DAut"
	CodeDCut Code = "DCut"
	CodeCPgI Code = "CPgI"
	CodeCPvI Code = "CPvI"
	CodeVer  Code = "_ver"
	CodePin  Code = "_pin"
	CodeInCm Code = "InCm"
	CodeTime Code = "Time"
	CodePrgI Code = "PrgI"
	CodePrvI Code = "PrvI"
	CodeTrPs Code = "TrPs"
	CodeTlIn Code = "TlIn"
	CodeTlSr Code = "TlSr"
)

// ErrBadPayload is returned by Parse when a recognized code's payload is
// the wrong length or otherwise malformed.
var ErrBadPayload = errors.New("command: bad payload")

// Command is the common interface every variant implements.
type Command interface {
	Code() Code
}

// Inbound commands can populate themselves from a frame payload.
type Inbound interface {
	Command
	Parse(payload []byte) error
}

// Outbound commands render themselves to a frame given the current
// planning context.
type Outbound interface {
	Command
	Encode(ctx *Context) (frame.Frame, error)
}

// Context carries everything an Encode call may need: the mutable state
// store and the wall-clock time to stamp into Time frames.
type Context struct {
	Store *state.Store
	Now   time.Time
}

// Parse dispatches a frame to its command variant. Unrecognized codes
// become an Unknown holder rather than an error: receipt of an unknown
// command is well-formed, not a protocol fault.
func Parse(f frame.Frame) (Inbound, error) {
	var c Inbound
	switch Code(f.Code) {
	case CodeDAut:
		c = &DAut{}
	case CodeDCut:
		c = &DCut{}
	case CodeCPgI:
		c = &CPgI{}
	case CodeCPvI:
		c = &CPvI{}
	default:
		return &Unknown{RawCode: f.Code, RawPayload: f.Payload}, nil
	}
	if err := c.Parse(f.Payload); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeAll renders a list of outbound commands to frames in order. Side
// effects from an earlier command (e.g. TrPs updating transitionPosition)
// are visible to later commands in the same call, matching the planner's
// documented carrier materialization order.
func EncodeAll(ctx *Context, cmds []Outbound) ([]frame.Frame, error) {
	frames := make([]frame.Frame, 0, len(cmds))
	for _, c := range cmds {
		f, err := c.Encode(ctx)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
