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

// DifferentialModulator carries the previous symbol's carriers forward so
// each new symbol's carriers are produced by multiplying the frequency-
// interleaved, QPSK-mapped input against the previous *output* symbol,
// seeded by the PRS for the first data symbol of a transmission frame.
type DifferentialModulator struct {
	perm []int
	prev []complex64
}

// NewDifferentialModulator builds a modulator for a mode with the given
// carrier count, resetting its reference to the mode's PRS.
func NewDifferentialModulator(carriers int) *DifferentialModulator {
	return &DifferentialModulator{
		perm: Permutation(carriers),
		prev: PRS(carriers),
	}
}

// ResetToPRS re-establishes the PRS as the reference for the next symbol,
// used at the start of every transmission frame.
func (m *DifferentialModulator) ResetToPRS(carriers int) {
	m.prev = PRS(carriers)
}

// Next differentially modulates one symbol's QPSK-mapped, bit-order input
// (length = carriers) into output carriers, updating the internal reference
// to the result.
func (m *DifferentialModulator) Next(mapped []complex64) []complex64 {
	interleaved := Interleave(mapped, m.perm)
	out := make([]complex64, len(interleaved))
	for k, s := range interleaved {
		out[k] = s * m.prev[k]
	}
	m.prev = out
	return out
}
