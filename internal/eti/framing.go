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

package eti

import "encoding/binary"

// Framing identifies one of the three ETI wire forms.
type Framing int

const (
	// FramingRaw is concatenated fixed 6144-byte frames, no length prefix.
	FramingRaw Framing = iota
	// FramingStreamed is u16-length-prefixed (little-endian) frames.
	FramingStreamed
	// FramingFramed is u32-nbFrames + u16-length + payload, repeated.
	FramingFramed
)

// RawFrameSize is the fixed size of a raw ETI(NI) frame.
const RawFrameSize = 6144

// syncWords are the two ETI sync patterns scanned for during framing
// autodetection.
var syncWords = [2]uint32{0x49C5F8FF, 0xB63A07FF}

// DetectFraming scans up to 6144 bytes of buf for a known sync pattern and
// reports which wire form it implies. It never consumes buf; callers use the
// result to pick the matching framing strategy for the rest of the stream.
// The SYNC field arrives as ERR (0xFF) followed by the three FSYNC bytes in
// wire order, so a little-endian read of the four bytes yields the
// well-known 0x49C5F8FF / 0xB63A07FF constants.
func DetectFraming(buf []byte) (Framing, error) {
	limit := len(buf)
	if limit > RawFrameSize {
		limit = RawFrameSize
	}
	for i := 0; i+4 <= limit; i++ {
		word := binary.LittleEndian.Uint32(buf[i:])
		if word == syncWords[0] || word == syncWords[1] {
			switch i {
			case 0:
				return FramingRaw, nil
			case 2:
				return FramingStreamed, nil
			case 6:
				return FramingFramed, nil
			default:
				return FramingRaw, nil
			}
		}
	}
	return 0, ErrMalformedFrame
}
