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

package conv

// constraintLength is K=7 for the DAB mother code (6 memory bits).
const constraintLength = 7

// generators are the four rate-1/4 mother-code polynomials of
// EN 300 401 §11.1, in octal: 133, 171, 145, 133 (X, A/Y, B/W, C/Z outputs).
var generators = [4]uint8{0133, 0171, 0145, 0133}

// Encode runs bits (one bit per byte, values 0/1) through the rate-1/4
// convolutional mother code, flushing the shift register with
// constraintLength-1 zero bits at the end (zero-tail termination). Output
// is four bytes (one per generator) per input bit, in generator order.
func Encode(bits []byte) []byte {
	out := make([]byte, 0, (len(bits)+constraintLength-1)*4)
	var reg uint8

	step := func(bit byte) {
		reg = (reg << 1) | (bit & 1)
		for _, g := range generators {
			out = append(out, parity(reg&g))
		}
	}

	for _, b := range bits {
		step(b)
	}
	for i := 0; i < constraintLength-1; i++ {
		step(0)
	}
	return out
}

func parity(v uint8) byte {
	var p uint8
	for v != 0 {
		p ^= v & 1
		v >>= 1
	}
	return p
}
