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

// Package conv implements the DAB rate-1/4 mother convolutional code
// (ETSI EN 300 401 §11.1) and the energy-dispersal PRBS scrambler
// (EN 300 401 Annex G) shared by the subchannel and FIC coding
// pipelines.
package conv

// EnergyDisperse XORs bits (one bit per byte, values 0/1) with the
// self-synchronising PRBS sequence generated by x^9 + x^5 + 1, seeded to all
// ones, per EN 300 401 Annex G. The PRBS is restarted for every call, which
// matches the per-frame scrambling the standard specifies: dispersal never
// carries state across ETI frames.
func EnergyDisperse(bits []byte) []byte {
	out := make([]byte, len(bits))
	var reg uint16 = 0x1FF // nine ones
	for i, b := range bits {
		// Output bit is the XOR of taps 9 and 5 (1-indexed from the shift
		// register), which is also the bit shifted in.
		fb := ((reg >> 8) ^ (reg >> 4)) & 1
		out[i] = b ^ byte(fb)
		reg = ((reg << 1) | fb) & 0x1FF
	}
	return out
}
