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

// Package bitfield converts between packed bytes and one-bit-per-byte slices.
// The channel-coding stages (energy dispersal, convolutional coding,
// puncturing, interleaving) all operate more naturally one bit at a time;
// keeping that representation explicit avoids bit-shift arithmetic bleeding
// into every stage.
package bitfield

// Unpack expands packed bytes into one byte per bit (0 or 1), MSB first,
// matching the bit order ETSI EN 300 401 uses when it numbers bits within a
// byte from b0 (MSB) to b7 (LSB).
func Unpack(packed []byte) []byte {
	out := make([]byte, 0, len(packed)*8)
	for _, b := range packed {
		for i := 7; i >= 0; i-- {
			out = append(out, (b>>uint(i))&1)
		}
	}
	return out
}

// Pack compresses one-bit-per-byte data back into packed bytes, MSB first.
// len(bits) need not be a multiple of 8; the final byte is zero-padded.
func Pack(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
