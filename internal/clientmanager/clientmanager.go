// Package clientmanager owns every active session, dispatches inbound
// datagrams to the right one, and fans out multicast carriers produced by
// a command to every other session sharing the same switcher state.
package clientmanager

import (
	"log/slog"
	"sync"
	"time"

	"github.com/broadcastswitch/switcherd/internal/metrics"
	"github.com/broadcastswitch/switcherd/internal/pubsub"
	"github.com/broadcastswitch/switcherd/internal/session"
	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/packet"
)

// fanoutTopic is the pubsub topic announcements of multicast fan-out
// activity are published to. Nothing in this process subscribes to it; it
// exists for a future multi-instance deployment to observe.
const fanoutTopic = "switcherd:fanout"

// Manager owns every session and the shared switcher state they mutate.
//
// Sessions are keyed purely by source address, not by session id: a
// session's SessionID field mutates in place (0 during the handshake,
// 0x8000+ClientID once established, per session.Session.HandleInbound), so
// keying the lookup on a value that changes under us would strand the live
// session under its old key the moment a client's first post-handshake
// packet arrives carrying the new id. One UDP source address is one client
// for the lifetime of its session, matching the retrieval pack's original
// client lookup (which rescans live clients comparing their current,
// mutable session id rather than trusting a stale map key).
type Manager struct {
	store   *state.Store
	product string
	metrics *metrics.Metrics
	bus     pubsub.PubSub

	mu       sync.Mutex
	sessions map[string]*session.Session
	nextID   uint16
}

// New creates a manager bound to a single shared state.Store.
func New(store *state.Store, product string, m *metrics.Metrics, bus pubsub.PubSub) *Manager {
	return &Manager{
		store:    store,
		product:  product,
		metrics:  m,
		bus:      bus,
		sessions: make(map[string]*session.Session),
	}
}

// getOrCreate returns the session for addr, creating a fresh one (with a
// newly allocated client id) the first time an address is seen. A
// re-handshake from an address already tracked reuses the same session and
// client id, since lookup never depends on the session's current id.
func (mgr *Manager) getOrCreate(addr string, now time.Time) *session.Session {
	if s, ok := mgr.sessions[addr]; ok {
		return s
	}

	mgr.nextID++
	s := session.New(addr, mgr.nextID, mgr.store, mgr.product, now)
	mgr.sessions[addr] = s
	if mgr.metrics != nil {
		mgr.metrics.SessionsActive.Inc()
	}
	return s
}

// HandleInbound routes a decoded envelope from addr to its session and fans
// out any resulting multicast carriers to every other live session.
func (mgr *Manager) HandleInbound(addr string, env packet.Envelope, now time.Time) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.metrics != nil {
		mgr.metrics.PacketsReceivedTotal.Inc()
	}

	origin := mgr.getOrCreate(addr, now)
	multicast, codes := origin.HandleInbound(now, env)

	if mgr.metrics != nil {
		for _, code := range codes {
			mgr.metrics.RecordCommand(string(code))
		}
	}

	if len(multicast) == 0 {
		return
	}

	for otherAddr, s := range mgr.sessions {
		if otherAddr == addr {
			continue
		}
		for _, c := range multicast {
			s.EnqueueCarrier(c)
		}
	}

	mgr.publishFanoutNotice(len(multicast))
}

// publishFanoutNotice announces fan-out activity on the pubsub bus. This is
// purely observational: command.Carrier itself is never serialized onto the
// bus, since it carries closures and interface-typed command slices that
// don't survive encoding. Actual delivery to peer sessions above is a
// direct, synchronous manager call.
func (mgr *Manager) publishFanoutNotice(count int) {
	if mgr.bus == nil {
		return
	}
	_ = mgr.bus.Publish(fanoutTopic, []byte{byte(count)})
}

// Tick advances every session's clock, sending due/retransmitted envelopes
// through send, and reaps any session that finished this tick.
func (mgr *Manager) Tick(now time.Time, send func(addr string, env packet.Envelope)) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	for key, s := range mgr.sessions {
		s.Tick(now, func(env packet.Envelope) {
			if mgr.metrics != nil {
				mgr.metrics.PacketsSentTotal.Inc()
				if env.Flags.Has(packet.FlagRetransmit) {
					mgr.metrics.RetransmitsTotal.Inc()
				}
			}
			send(s.Addr, env)
		})

		if s.State == session.Finished {
			delete(mgr.sessions, key)
			if mgr.metrics != nil {
				mgr.metrics.SessionsActive.Dec()
				mgr.metrics.RecordSessionFinished("dropout")
			}
			slog.Debug("session reaped", "addr", s.Addr, "client_id", s.ClientID)
		}
	}
}

// Count reports how many sessions (any state) the manager currently tracks.
func (mgr *Manager) Count() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.sessions)
}
