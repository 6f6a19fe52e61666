// Package server runs the UDP datagram loop: one socket, one goroutine,
// reading with a short deadline so the session tick runs even when no
// datagram arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/broadcastswitch/switcherd/internal/clientmanager"
	"github.com/broadcastswitch/switcherd/internal/wire/packet"
)

const (
	maxDatagramSize = 2048
	readDeadline    = 1 * time.Second
	tickInterval    = 50 * time.Millisecond
)

// Server owns the UDP socket and drives the tick loop.
type Server struct {
	addr string
	port int
	mgr  *clientmanager.Manager
}

// New binds no socket yet; call Run to open it and start serving.
func New(addr string, port int, mgr *clientmanager.Manager) *Server {
	return &Server{addr: addr, port: port, mgr: mgr}
}

// Run opens the UDP socket and blocks until ctx is canceled or the socket
// fails in a way that isn't a read timeout.
func (s *Server) Run(ctx context.Context) error {
	laddr := fmt.Sprintf("%s:%d", s.addr, s.port)
	conn, err := net.ListenPacket("udp", laddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", laddr, err)
	}
	defer conn.Close()

	slog.Info("switcher server listening", "addr", laddr)

	send := func(addr string, env packet.Envelope) {
		raddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			slog.Warn("bad peer address, dropping outbound packet", "addr", addr, "err", err)
			return
		}
		buf, err := env.Encode()
		if err != nil {
			slog.Warn("failed to encode outbound packet", "addr", addr, "err", err)
			return
		}
		if _, err := conn.WriteTo(buf, raddr); err != nil {
			slog.Warn("failed to send packet", "addr", addr, "err", err)
		}
	}

	buf := make([]byte, maxDatagramSize)
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("server shutting down")
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return fmt.Errorf("server: set read deadline: %w", err)
		}

		n, raddr, err := conn.ReadFrom(buf)
		now := time.Now()

		switch {
		case err == nil:
			env, decErr := packet.Decode(buf[:n])
			if decErr != nil {
				slog.Debug("dropping malformed packet", "addr", raddr.String(), "err", decErr)
				break
			}
			s.mgr.HandleInbound(raddr.String(), env, now)
		case isTimeout(err):
			// Expected: nothing arrived within readDeadline, fall through to tick.
		case isTransient(err):
			slog.Warn("transient socket error, continuing", "err", err)
		default:
			return fmt.Errorf("server: read: %w", err)
		}

		if now.Sub(lastTick) >= tickInterval {
			s.mgr.Tick(now, send)
			lastTick = now
		}
	}
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func isTransient(err error) bool {
	// ECONNRESET on a UDP socket (a previous send provoked an ICMP port
	// unreachable) is not fatal: the peer is gone, not the socket.
	var sysErr *os.SyscallError
	return errors.As(err, &sysErr)
}
