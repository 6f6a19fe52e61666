// Package initstate supplies the sequence of pre-built outbound commands
// that seed a freshly established session: a version/product announcement
// followed by a snapshot of the first mix-effect block's state, each sent
// as its own packet, terminated by an InCm frame.
package initstate

import (
	"github.com/broadcastswitch/switcherd/internal/command"
	"github.com/broadcastswitch/switcherd/internal/state"
)

// Commands returns the ordered setup commands for a newly established
// session, not including the terminating InCm (callers append that once
// the setup sequence has been sent, per the handshake contract).
func Commands(s *state.Store) []command.Outbound {
	product := s.Product()
	cmds := []command.Outbound{
		&command.Ver{},
		&command.Pin{ProductName: product},
	}

	mes := s.Keys("MixEffectBlocks")
	if len(mes) == 0 {
		return cmds
	}
	me := uint8(0)
	total := s.TransitionRate(int(me))
	cmds = append(cmds,
		&command.PrgI{ME: me},
		&command.PrvI{ME: me},
		&command.TlIn{ME: me},
		&command.TlSr{ME: me, Product: product},
		&command.TrPs{ME: me, FramesRemaining: total, Total: total},
	)
	return cmds
}

// Terminator returns the frame marking the end of the initial dump.
func Terminator() command.Outbound {
	return &command.InCm{}
}
