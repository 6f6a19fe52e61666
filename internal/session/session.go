// Package session implements the per-client session engine: handshake,
// inbound dispatch, the outbound carrier/in-flight queues, retransmission,
// liveness, and graceful dropout.
package session

import (
	"bytes"
	"time"

	"github.com/broadcastswitch/switcherd/internal/command"
	"github.com/broadcastswitch/switcherd/internal/initstate"
	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/frame"
	"github.com/broadcastswitch/switcherd/internal/wire/packet"
)

// The two opaque INIT payloads a real client ever sends: a first connection
// and a disconnect/reconnect. Any other INIT-flagged payload is not a
// recognized handshake request and must not reset an established session.
var (
	initPayloadConnect    = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	initPayloadDisconnect = []byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

func isInitRequestPayload(payload []byte) bool {
	return bytes.Equal(payload, initPayloadConnect) || bytes.Equal(payload, initPayloadDisconnect)
}

// State is a session's handshake/lifecycle state.
type State int

const (
	Uninitialized State = iota
	WaitInitAck
	Established
	Finished
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case WaitInitAck:
		return "WAIT_INIT_ACK"
	case Established:
		return "ESTABLISHED"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

const (
	activityTimeout = 1 * time.Second
	dropoutTimeout  = 3 * time.Second
	resendInterval  = 500 * time.Millisecond
)

type inFlightPacket struct {
	Envelope        packet.Envelope
	LastSendTime    time.Time
	RetransmitCount int
}

// Session is one client's protocol state, addressed by its source Addr.
type Session struct {
	Addr     string
	ClientID uint16
	Product  string

	SessionID uint16
	State     State

	Store *state.Store

	lastOutboundPacketID uint16
	lastAckedInboundID   uint16
	lastActivityTime     time.Time

	handshakePacketID uint16

	outbound []command.Carrier
	inFlight []*inFlightPacket
}

// New creates a session for a freshly seen source address.
func New(addr string, clientID uint16, store *state.Store, product string, now time.Time) *Session {
	return &Session{
		Addr:             addr,
		ClientID:         clientID,
		Product:          product,
		Store:            store,
		State:            Uninitialized,
		lastActivityTime: now,
	}
}

func (s *Session) nextOutboundPacketID() uint16 {
	s.lastOutboundPacketID = packet.NextPacketID(s.lastOutboundPacketID)
	return s.lastOutboundPacketID
}

// HandleInbound processes one decoded envelope addressed to this session
// and returns any carriers that must be fanned out to every other session,
// plus the codes of every command successfully parsed from it (for
// metrics; empty for non-COMMAND packets or parse failures).
func (s *Session) HandleInbound(now time.Time, env packet.Envelope) ([]command.Carrier, []command.Code) {
	s.lastActivityTime = now

	if env.Flags.Has(packet.FlagInit) {
		if isInitRequestPayload(env.Payload) {
			s.handleInitRequest()
		}
		return nil, nil
	}

	if env.Flags.Has(packet.FlagAck) {
		if s.State == WaitInitAck && env.AckedPacketID == s.handshakePacketID {
			s.SessionID = 0x8000 + s.ClientID
			s.State = Established
			s.enqueueInitialState(now)
		} else {
			s.purgeAcked(env.AckedPacketID)
		}
	}

	if !env.Flags.Has(packet.FlagCommand) {
		return nil, nil
	}
	return s.handleCommandFrames(now, env)
}

func (s *Session) handleInitRequest() {
	s.State = Uninitialized
	s.SessionID = 0
	s.lastOutboundPacketID = 0
	s.lastAckedInboundID = 0
	s.outbound = nil
	s.inFlight = nil

	pid := s.nextOutboundPacketID()
	payload := []byte{0x02, 0x00, byte(s.ClientID >> 8), byte(s.ClientID), 0, 0, 0, 0} //nolint:gosec
	env := packet.Envelope{
		Flags:     packet.FlagInit,
		SessionID: 0,
		PacketID:  pid,
		Payload:   payload,
	}
	s.inFlight = append(s.inFlight, &inFlightPacket{Envelope: env})
	s.handshakePacketID = pid
	s.State = WaitInitAck
}

func (s *Session) enqueueInitialState(now time.Time) {
	for _, c := range initstate.Commands(s.Store) {
		s.outbound = append(s.outbound, command.Carrier{
			SendTime: now,
			Commands: []command.Outbound{c},
		})
	}
	s.outbound = append(s.outbound, command.Carrier{
		SendTime: now,
		Commands: []command.Outbound{initstate.Terminator()},
	})
}

func (s *Session) purgeAcked(acked uint16) {
	kept := s.inFlight[:0]
	for _, p := range s.inFlight {
		if packet.IDLessEq(p.Envelope.PacketID, acked) {
			continue
		}
		kept = append(kept, p)
	}
	s.inFlight = kept
}

func (s *Session) handleCommandFrames(now time.Time, env packet.Envelope) ([]command.Carrier, []command.Code) {
	frames, err := frame.DecodeAll(env.Payload)
	if err != nil {
		// MALFORMED_PACKET: drop the datagram entirely, no ACK.
		return nil, nil
	}
	s.lastAckedInboundID = env.PacketID

	var carriers []command.Carrier
	var codes []command.Code
	for _, f := range frames {
		cmd, perr := command.Parse(f)
		if perr != nil {
			// BAD_PAYLOAD: drop this frame, continue with the rest.
			continue
		}
		codes = append(codes, cmd.Code())
		carriers = append(carriers, command.Plan(now, s.Store, s.Product, cmd)...)
	}

	if len(carriers) == 0 {
		s.outbound = append(s.outbound, command.Carrier{
			SendTime: now,
			AckOf:    env.PacketID,
		})
		return nil, codes
	}

	carriers[0].AckOf = env.PacketID

	var multicast []command.Carrier
	for _, c := range carriers {
		if c.Multicast {
			cp := c
			cp.AckOf = 0
			multicast = append(multicast, cp)
		}
		s.outbound = append(s.outbound, c)
	}
	return multicast, codes
}

// EnqueueCarrier appends an externally-originated carrier (a fan-out copy
// from another session) to this session's outbound queue.
func (s *Session) EnqueueCarrier(c command.Carrier) {
	s.outbound = append(s.outbound, c)
}

// Send is called by Tick once per envelope that must go out on the wire.
type Send func(env packet.Envelope)

// Tick materializes due carriers, applies liveness/dropout rules, and
// drains the in-flight queue, sending every envelope that must go out now.
func (s *Session) Tick(now time.Time, send Send) {
	s.materializeDueCarriers(now)

	if s.State == Established && now.Sub(s.lastActivityTime) > activityTimeout {
		pid := s.nextOutboundPacketID()
		s.inFlight = append(s.inFlight, &inFlightPacket{Envelope: packet.Envelope{
			Flags:         packet.FlagCommand | packet.FlagAck,
			SessionID:     s.SessionID,
			AckedPacketID: s.lastAckedInboundID,
			PacketID:      pid,
		}})
	}

	if s.State == Established && now.Sub(s.lastActivityTime) > dropoutTimeout {
		pid := s.nextOutboundPacketID()
		s.inFlight = append(s.inFlight, &inFlightPacket{Envelope: packet.Envelope{
			Flags:     packet.FlagInit,
			SessionID: s.SessionID,
			PacketID:  pid,
		}})
		s.State = Finished
	}

	s.drain(now, send)
}

func (s *Session) materializeDueCarriers(now time.Time) {
	for len(s.outbound) > 0 && s.outbound[0].Due(now) {
		c := s.outbound[0]
		s.outbound = s.outbound[1:]

		if c.BeforeEncode != nil {
			c.BeforeEncode(s.Store)
		}

		flags := packet.Flags(0)
		var payload []byte
		if len(c.Commands) > 0 {
			ctx := &command.Context{Store: s.Store, Now: now}
			frames, err := command.EncodeAll(ctx, c.Commands)
			if err != nil {
				continue
			}
			payload, err = frame.EncodeAll(frames)
			if err != nil {
				continue
			}
			flags |= packet.FlagCommand
		}
		if c.AckOf > 0 {
			flags |= packet.FlagAck
		}

		pid := s.nextOutboundPacketID()
		s.inFlight = append(s.inFlight, &inFlightPacket{Envelope: packet.Envelope{
			Flags:         flags,
			SessionID:     s.SessionID,
			AckedPacketID: c.AckOf,
			PacketID:      pid,
			Payload:       payload,
		}})
	}
}

func (s *Session) drain(now time.Time, send Send) {
	kept := s.inFlight[:0]
	for _, p := range s.inFlight {
		hasCommand := p.Envelope.Flags.Has(packet.FlagCommand)
		if !hasCommand {
			send(p.Envelope)
			continue
		}
		switch {
		case p.LastSendTime.IsZero():
			send(p.Envelope)
			p.LastSendTime = now
		case now.Sub(p.LastSendTime) > resendInterval:
			p.Envelope.Flags |= packet.FlagRetransmit
			send(p.Envelope)
			p.LastSendTime = now
			p.RetransmitCount++
		}
		kept = append(kept, p)
	}
	s.inFlight = kept
}

// InFlightCount reports how many packets are currently awaiting ACK,
// exposed for tests and metrics.
func (s *Session) InFlightCount() int {
	return len(s.inFlight)
}
