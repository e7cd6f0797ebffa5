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

import "github.com/tinylib/msgp/msgp"

// EDIHeader is the decoded AF-packet/TAG-item header of one EDI datagram:
// the four fields the "deti" TAG item carries that this modulator needs.
// It is msgp-tagged so the header can cross a pubsub or capture boundary
// in binary form; the Marshal/Unmarshal pair below is the hand-written
// equivalent of msgp's generated code.
type EDIHeader struct {
	Seq       uint16 `msg:"seq"`
	FrameType uint8  `msg:"frame_type"`
	UTCO      int8   `msg:"utco"`
	Seconds   uint32 `msg:"seconds"`
}

// MarshalMsg appends the msgpack encoding of h to b.
func (h EDIHeader) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendMapHeader(b, 4)
	o = msgp.AppendString(o, "seq")
	o = msgp.AppendUint16(o, h.Seq)
	o = msgp.AppendString(o, "frame_type")
	o = msgp.AppendUint8(o, h.FrameType)
	o = msgp.AppendString(o, "utco")
	o = msgp.AppendInt8(o, h.UTCO)
	o = msgp.AppendString(o, "seconds")
	o = msgp.AppendUint32(o, h.Seconds)
	return o, nil
}

// UnmarshalMsg decodes h from the msgpack-encoded prefix of bts, returning
// the remaining unread bytes.
func (h *EDIHeader) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, o, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < sz; i++ {
		var field string
		field, o, err = msgp.ReadStringBytes(o)
		if err != nil {
			return nil, err
		}
		switch field {
		case "seq":
			h.Seq, o, err = msgp.ReadUint16Bytes(o)
		case "frame_type":
			h.FrameType, o, err = msgp.ReadUint8Bytes(o)
		case "utco":
			h.UTCO, o, err = msgp.ReadInt8Bytes(o)
		case "seconds":
			h.Seconds, o, err = msgp.ReadUint32Bytes(o)
		default:
			o, err = msgp.Skip(o)
		}
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Msgsize returns an upper bound on the encoded size of h.
func (h EDIHeader) Msgsize() int {
	return msgp.MapHeaderSize +
		5 + msgp.Uint16Size +
		11 + msgp.Uint8Size +
		5 + msgp.Int8Size +
		8 + msgp.Uint32Size
}
