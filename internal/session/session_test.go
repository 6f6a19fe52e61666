package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastswitch/switcherd/internal/session"
	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/packet"
)

func newTestSession(now time.Time) *session.Session {
	s := state.New()
	s.SetProgramInput(0, 1)
	s.SetPreviewInput(0, 2)
	s.Set("MixEffectBlocks.0.TransitionStyle.style", "Mix")
	s.Set("MixEffectBlocks.0.TransitionStyle.MixParameters.rate", "30")
	s.Set("product", "ATEM Mini")
	return session.New("127.0.0.1:1234", 1, s, "ATEM Mini", now)
}

func TestHandshakeEstablishesSession(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{
		Flags:   packet.FlagInit,
		Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	})
	assert.Equal(t, session.WaitInitAck, sess.State)

	var sent []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	require.Len(t, sent, 1)
	assert.True(t, sent[0].Flags.Has(packet.FlagInit))

	initReplyID := sent[0].PacketID

	_, _ = sess.HandleInbound(now, packet.Envelope{
		Flags:         packet.FlagAck,
		AckedPacketID: initReplyID,
	})
	assert.Equal(t, session.Established, sess.State)
	assert.Equal(t, uint16(0x8000+1), sess.SessionID)

	sent = nil
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	assert.NotEmpty(t, sent, "expect initial state dump to be sent on establish")
}

func TestAckedInFlightPacketsArePurged(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}})
	var sent []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	require.Len(t, sent, 1)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: sent[0].PacketID})
	require.Equal(t, session.Established, sess.State)

	// Send the initial-state dump: every COMMAND packet stays in flight
	// until the client acknowledges it.
	sent = nil
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	require.NotEmpty(t, sent)
	require.Equal(t, len(sent), sess.InFlightCount())

	// Acking the last one covers every earlier id too.
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: sent[len(sent)-1].PacketID})
	assert.Equal(t, 0, sess.InFlightCount())
}

func TestRetransmitAfterResendInterval(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}})

	var first []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { first = append(first, env) })
	require.Len(t, first, 1)

	// Establish so outbound carriers use COMMAND packets we can check retransmit on.
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: first[0].PacketID})

	// Materialize and send the initial-state carriers once at "now" so the
	// retransmit clock for them starts ticking from here.
	sess.Tick(now, func(packet.Envelope) {})

	later := now.Add(600 * time.Millisecond)
	var resent []packet.Envelope
	sess.Tick(later, func(env packet.Envelope) { resent = append(resent, env) })

	foundRetransmit := false
	for _, env := range resent {
		if env.Flags.Has(packet.FlagRetransmit) {
			foundRetransmit = true
		}
	}
	assert.True(t, foundRetransmit, "expected at least one retransmitted COMMAND packet after 600ms")
}

func TestLivenessPingAfterActivityTimeout(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}})
	var sent []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: sent[0].PacketID})

	later := now.Add(1200 * time.Millisecond)
	var pinged []packet.Envelope
	sess.Tick(later, func(env packet.Envelope) { pinged = append(pinged, env) })

	foundPing := false
	for _, env := range pinged {
		if env.Flags.Has(packet.FlagCommand) && env.Flags.Has(packet.FlagAck) && len(env.Payload) == 0 {
			foundPing = true
		}
	}
	assert.True(t, foundPing, "expected a liveness ping once activity timeout elapses")
}

func TestUnrecognizedInitPayloadDoesNotResetEstablishedSession(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}})
	var sent []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: sent[0].PacketID})
	require.Equal(t, session.Established, sess.State)

	// Garbage INIT-flagged payload: not one of the two recognized handshake
	// byte sequences, so it must be ignored rather than treated as a fresh
	// handshake request.
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}})
	assert.Equal(t, session.Established, sess.State)
}

func TestDropoutAfterGoodbyeTimeout(t *testing.T) {
	t.Parallel()
	now := time.Now()
	sess := newTestSession(now)

	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagInit, Payload: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}})
	var sent []packet.Envelope
	sess.Tick(now, func(env packet.Envelope) { sent = append(sent, env) })
	_, _ = sess.HandleInbound(now, packet.Envelope{Flags: packet.FlagAck, AckedPacketID: sent[0].PacketID})

	later := now.Add(3500 * time.Millisecond)
	sess.Tick(later, func(packet.Envelope) {})

	assert.Equal(t, session.Finished, sess.State)
}
