package command

import (
	"time"

	"github.com/broadcastswitch/switcherd/internal/state"
)

// Carrier is a scheduled group of outbound commands: a send deadline, an
// optional ack-of piggyback, and whether it should be fanned out to every
// other session.
type Carrier struct {
	Commands  []Outbound
	SendTime  time.Time
	Multicast bool
	AckOf     uint16

	// BeforeEncode, when set, mutates the state store immediately before
	// this carrier's commands are encoded. Used by the auto-transition's
	// final carrier, whose program/preview swap must happen only when the
	// carrier actually materializes, not when the animation is planned.
	BeforeEncode func(s *state.Store)
}

// Due reports whether the carrier's send deadline has passed.
func (c Carrier) Due(now time.Time) bool {
	return !c.SendTime.After(now)
}
