// SPDX-License-Identifier: AGPL-3.0-or-later
// dabmod - DAB (ETSI EN 300 401) modulator with SFN timestamping
// Copyright (C) 2024-2026 SDRNet
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/sdrnet/dabmod>

package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sdrnet/dabmod/internal/logctx"
)

// TCPChunkSize is how many bytes TCPSource reads per Read call.
const TCPChunkSize = 6144 * 4

// TCPSource dials addr and reads ETI bytes from the connection,
// transparently redialing with a ReconnectMin backoff if the connection
// drops.
type TCPSource struct {
	addr string
	log  logctx.Sink

	conn net.Conn
	buf  []byte
}

// DialTCP returns a TCPSource for addr ("host:port"); the first connection
// attempt happens lazily on the first Read call.
func DialTCP(addr string, log logctx.Sink) *TCPSource {
	if log == nil {
		log = logctx.Discard()
	}
	return &TCPSource{addr: addr, log: log, buf: make([]byte, TCPChunkSize)}
}

func (s *TCPSource) dial(ctx context.Context) error {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", s.addr)
		if err == nil {
			s.conn = conn
			return nil
		}
		s.log.Warn("transport: tcp dial failed, retrying", "addr", s.addr, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ReconnectMin):
		}
	}
}

// Read returns the next chunk of bytes, reconnecting transparently (after
// ReconnectMin backoff) if the connection was never established or was
// dropped by the peer.
func (s *TCPSource) Read(ctx context.Context) ([]byte, error) {
	if s.conn == nil {
		if err := s.dial(ctx); err != nil {
			return nil, err
		}
	}

	n, err := s.conn.Read(s.buf)
	if err != nil {
		s.log.Warn("transport: tcp connection lost, reconnecting", "addr", s.addr, "error", err)
		_ = s.conn.Close()
		s.conn = nil
		if err := s.dial(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	out := make([]byte, n)
	copy(out, s.buf[:n])
	return out, nil
}

// Close closes the underlying connection, if any.
func (s *TCPSource) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("transport: close tcp connection: %w", err)
	}
	return nil
}
