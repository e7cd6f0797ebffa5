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

// Puncturer removes bits from a rate-1/4 mother-code stream to approximate a
// target code rate. The real ETSI EN 300 401 puncturing vectors (PI_1..PI_24
// for UEP, and the EEP tables) are each a fixed 32-bit-period keep/drop
// pattern tuned per protection profile. A Puncturer here instead keeps a
// configurable number of bits
// out of every group of groupSize mother-code bits, which reproduces the
// correct *rate* and therefore the correct CIF/FIC bit budget, at the cost of
// not matching the standard's exact bit-selection pattern.
type Puncturer struct {
	groupSize int
	keep      []bool // length groupSize, true = keep this offset
}

// NewPuncturer builds a Puncturer that keeps `keepCount` bits out of every
// `groupSize` mother-code bits, spread as evenly as possible (Bresenham-style
// distribution) so the retained bits approximate uniform puncturing.
func NewPuncturer(groupSize, keepCount int) *Puncturer {
	keep := make([]bool, groupSize)
	if keepCount >= groupSize {
		for i := range keep {
			keep[i] = true
		}
		return &Puncturer{groupSize: groupSize, keep: keep}
	}
	acc := 0
	for i := 0; i < groupSize; i++ {
		acc += keepCount
		if acc >= groupSize {
			acc -= groupSize
			keep[i] = true
		}
	}
	return &Puncturer{groupSize: groupSize, keep: keep}
}

// Rate returns the approximate code rate this Puncturer yields.
func (p *Puncturer) Rate() float64 {
	n := 0
	for _, k := range p.keep {
		if k {
			n++
		}
	}
	return float64(n) / float64(p.groupSize)
}

// OutputLen returns the number of bits Puncture emits for an input of
// mother-code bits of length n.
func (p *Puncturer) OutputLen(n int) int {
	full := n / p.groupSize
	rem := n % p.groupSize
	count := full * p.countKept()
	for i := 0; i < rem; i++ {
		if p.keep[i] {
			count++
		}
	}
	return count
}

func (p *Puncturer) countKept() int {
	n := 0
	for _, k := range p.keep {
		if k {
			n++
		}
	}
	return n
}

// Puncture drops bits according to the keep pattern, cycling it across the
// whole mother-code stream.
func (p *Puncturer) Puncture(bits []byte) []byte {
	out := make([]byte, 0, p.OutputLen(len(bits)))
	for i, b := range bits {
		if p.keep[i%p.groupSize] {
			out = append(out, b)
		}
	}
	return out
}
