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

package ofdm

import "math"

// MapBits converts coded bits (one bit per byte, two consecutive bits per
// carrier) into unit-modulus QPSK differential-phase multipliers. Bit pair (0,0)
// maps to the identity multiplier 1+0j, and the remaining three patterns
// step through the other quarter-circle positions (j, -1, -j) in Gray
// order. With this choice an all-zero-bit symbol differentially modulated
// against the PRS reproduces the PRS exactly, without rotating the whole
// constellation by 45 degrees.
func MapBits(bits []byte) []complex64 {
	n := len(bits) / 2
	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		b0, b1 := bits[2*i], bits[2*i+1]
		out[i] = qpskPoint(b0, b1)
	}
	return out
}

func qpskPoint(b0, b1 byte) complex64 {
	switch {
	case b0 == 0 && b1 == 0:
		return complex(1, 0)
	case b0 == 0 && b1 == 1:
		return complex(0, 1)
	case b0 == 1 && b1 == 1:
		return complex(-1, 0)
	default: // b0==1, b1==0
		return complex(0, -1)
	}
}

// unitPhasor is a small helper used by the PRS generator to build points on
// the same quarter-circle constellation from a 0..3 phase index.
func unitPhasor(quadrant int) complex64 {
	angle := float64(quadrant) * math.Pi / 2
	return complex64(complex(math.Cos(angle), math.Sin(angle)))
}
