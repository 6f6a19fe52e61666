package command

import (
	"encoding/binary"

	"github.com/broadcastswitch/switcherd/internal/state"
)

// Applier is implemented by inbound commands that mutate the state store
// as a single atomic step. DAut is deliberately excluded: its mutation
//(the program/preview swap) happens at the end of a multi-carrier
// animation, orchestrated by the planner, not as an immediate Apply.
type Applier interface {
	Command
	Apply(s *state.Store)
}

// DAut triggers the multi-packet auto-transition animation for an ME.
type DAut struct {
	ME uint8
}

func (c *DAut) Code() Code { return CodeDAut }

func (c *DAut) Parse(payload []byte) error {
	if len(payload) < 1 {
		return ErrBadPayload
	}
	c.ME = payload[0]
	return nil
}

// DCut swaps program and preview for an ME instantaneously.
type DCut struct {
	ME uint8
}

func (c *DCut) Code() Code { return CodeDCut }

func (c *DCut) Parse(payload []byte) error {
	if len(payload) < 1 {
		return ErrBadPayload
	}
	c.ME = payload[0]
	return nil
}

func (c *DCut) Apply(s *state.Store) {
	s.SwapProgramPreview(int(c.ME))
}

// CPgI sets the program source for an ME.
type CPgI struct {
	ME     uint8
	Source uint16
}

func (c *CPgI) Code() Code { return CodeCPgI }

func (c *CPgI) Parse(payload []byte) error {
	if len(payload) < 4 {
		return ErrBadPayload
	}
	c.ME = payload[0]
	c.Source = binary.BigEndian.Uint16(payload[2:4])
	return nil
}

func (c *CPgI) Apply(s *state.Store) {
	s.SetProgramInput(int(c.ME), int(c.Source))
}

// CPvI sets the preview source for an ME.
type CPvI struct {
	ME     uint8
	Source uint16
}

func (c *CPvI) Code() Code { return CodeCPvI }

func (c *CPvI) Parse(payload []byte) error {
	if len(payload) < 4 {
		return ErrBadPayload
	}
	c.ME = payload[0]
	c.Source = binary.BigEndian.Uint16(payload[2:4])
	return nil
}

func (c *CPvI) Apply(s *state.Store) {
	s.SetPreviewInput(int(c.ME), int(c.Source))
}

// Unknown is the opaque fallback for any code not in the registry. It
// preserves the raw bytes verbatim and never fails to parse.
type Unknown struct {
	RawCode    string
	RawPayload []byte
}

func (c *Unknown) Code() Code { return Code(c.RawCode) }

func (c *Unknown) Parse(payload []byte) error {
	c.RawPayload = payload
	return nil
}

// Apply is a no-op: an unknown command never mutates state.
func (c *Unknown) Apply(s *state.Store) {}
