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
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/sdrnet/dabmod/internal/logctx"
)

// ediDatagramMax bounds one received EDI datagram.
const ediDatagramMax = 8192

// ErrEDITagNotFound is returned when a received datagram has no "deti" TAG
// item carrying an ETI(LI) payload.
var ErrEDITagNotFound = errors.New("transport: edi datagram has no deti tag item")

// EDISource receives EDI-over-UDP datagrams and extracts the ETI(LI)
// frame bytes carried in each "deti" TAG item. Each Read returns the
// payload of one datagram; payloads are not joined across datagrams.
type EDISource struct {
	conn *net.UDPConn
	log  logctx.Sink

	lastHeader EDIHeader
}

// ListenEDI binds a UDP socket on port.
func ListenEDI(port int, log logctx.Sink) (*EDISource, error) {
	if log == nil {
		log = logctx.Discard()
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: listen edi udp :%d: %w", port, err)
	}
	return &EDISource{conn: conn, log: log}, nil
}

// Read blocks for the next EDI datagram and returns the ETI(LI) payload
// bytes its "deti" TAG item carries.
func (s *EDISource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, ediDatagramMax)
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("transport: edi udp read: %w", err)
	}
	if n == ediDatagramMax {
		s.log.Warn("transport: edi datagram may have been truncated")
	}

	header, payload, err := parseEDIDatagram(buf[:n])
	if err != nil {
		return nil, err
	}
	s.lastHeader = header
	return payload, nil
}

// LastHeader returns the AF/TAG header decoded from the most recently
// received datagram, for metrics/diagnostics.
func (s *EDISource) LastHeader() EDIHeader { return s.lastHeader }

// Close releases the underlying UDP socket.
func (s *EDISource) Close() error {
	return s.conn.Close()
}

// parseEDIDatagram decodes one AF-packet datagram and locates its "deti"
// TAG item, returning the decoded header fields and the ETI(LI) payload
// bytes. TAG item layout is name[4] + length-in-bytes[4] big-endian +
// payload, the length normalized to whole bytes, since this core only
// needs the deti item's payload and four header fields, not a fully
// general EDI demux.
func parseEDIDatagram(pkt []byte) (EDIHeader, []byte, error) {
	const afHeaderLen = 10 // "AF" sync(2) + length(4) + seq(2) + ar(2)
	if len(pkt) < afHeaderLen {
		return EDIHeader{}, nil, fmt.Errorf("transport: edi datagram too short")
	}
	if pkt[0] != 'A' || pkt[1] != 'F' {
		return EDIHeader{}, nil, fmt.Errorf("transport: edi datagram missing AF sync")
	}

	header := EDIHeader{
		Seq: binary.BigEndian.Uint16(pkt[6:8]),
	}

	body := pkt[afHeaderLen:]
	for len(body) >= 8 {
		name := string(body[0:4])
		length := binary.BigEndian.Uint32(body[4:8])
		body = body[8:]
		if uint32(len(body)) < length {
			break
		}
		item := body[:length]
		body = body[length:]

		if name == "deti" {
			if len(item) < 2 {
				return header, nil, fmt.Errorf("transport: deti tag item too short")
			}
			header.FrameType = item[0]
			header.UTCO = int8(item[1])
			if len(item) >= 6 {
				header.Seconds = binary.BigEndian.Uint32(item[2:6])
			}
			payload := item[minInt(6, len(item)):]
			out := make([]byte, len(payload))
			copy(out, payload)
			return header, out, nil
		}
	}

	return header, nil, ErrEDITagNotFound
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
