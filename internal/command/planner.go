package command

import (
	"time"

	"github.com/broadcastswitch/switcherd/internal/state"
)

// carrierStep is the monotonic spacing between intermediate auto-transition
// carriers.
const carrierStep = 200 * time.Millisecond

// decrementPerStep is how much frames_remaining drops at each intermediate
// carrier.
const decrementPerStep = 6

// Plan turns a single inbound command into zero or more scheduled outbound
// carriers, relative to the monotonic instant now. It performs any
// immediate state mutation the command requires (DCut, CPgI, CPvI); DAut's
// mutation is deferred to its final carrier via Carrier.BeforeEncode.
func Plan(now time.Time, store *state.Store, product string, cmd Inbound) []Carrier {
	switch v := cmd.(type) {
	case *DCut:
		v.Apply(store)
		me := v.ME
		return []Carrier{{
			SendTime:  now,
			Multicast: true,
			Commands: []Outbound{
				&Time{}, &TlIn{ME: me}, &TlSr{ME: me, Product: product}, &PrgI{ME: me}, &PrvI{ME: me},
			},
		}}
	case *CPgI:
		v.Apply(store)
		me := v.ME
		return []Carrier{{
			SendTime:  now,
			Multicast: true,
			Commands: []Outbound{
				&Time{}, &TlIn{ME: me}, &TlSr{ME: me, Product: product}, &PrgI{ME: me},
			},
		}}
	case *CPvI:
		v.Apply(store)
		me := v.ME
		return []Carrier{{
			SendTime:  now,
			Multicast: true,
			Commands: []Outbound{
				&Time{}, &TlIn{ME: me}, &TlSr{ME: me, Product: product}, &PrvI{ME: me},
			},
		}}
	case *DAut:
		return planAutoTransition(now, store, product, v.ME)
	default:
		// Unknown (and anything else unrecognized): no response carriers,
		// the session engine falls back to a bare ACK.
		return nil
	}
}

func planAutoTransition(now time.Time, store *state.Store, product string, me uint8) []Carrier {
	total := store.TransitionRate(int(me))

	carriers := make([]Carrier, 0, 8)

	remaining := total - 1
	carriers = append(carriers, Carrier{
		SendTime:  now,
		Multicast: true,
		Commands: []Outbound{
			&Time{},
			&TlIn{ME: me},
			&TlSr{ME: me, Product: product},
			&PrvI{ME: me},
			&TrPs{ME: me, FramesRemaining: remaining, Total: total},
		},
	})

	lastRemaining := remaining
	for step := 1; ; step++ {
		remaining -= decrementPerStep
		if remaining <= 0 {
			break
		}
		carriers = append(carriers, Carrier{
			SendTime:  now.Add(time.Duration(step) * carrierStep),
			Multicast: true,
			Commands: []Outbound{
				&Time{},
				&TrPs{ME: me, FramesRemaining: remaining, Total: total},
			},
		})
		lastRemaining = remaining
	}

	finalDelay := time.Duration(float64(total) / 30.0 * float64(time.Second))
	carriers = append(carriers, Carrier{
		SendTime:  now.Add(finalDelay),
		Multicast: true,
		BeforeEncode: func(s *state.Store) {
			s.SwapProgramPreview(int(me))
		},
		Commands: []Outbound{
			&TrPs{ME: me, FramesRemaining: lastRemaining, Total: total},
			&TlIn{ME: me},
			&TlSr{ME: me, Product: product},
			&PrgI{ME: me},
			&PrvI{ME: me},
			&TrPs{ME: me, FramesRemaining: total, Total: total},
		},
	})

	return carriers
}
