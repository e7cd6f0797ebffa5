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

// Package tii implements the Transmitter Identification Information
// generator: a sparse carrier pattern injected into the
// null symbol of one out of every four transmission frames, identifying a
// transmitter within a Single Frequency Network.
package tii

import "fmt"

// NumCombs and NumPatterns bound the comb/pattern controllable
// parameters.
const (
	NumCombs    = 24
	NumPatterns = 70
)

// patternTM124 is the TII pattern table of ETSI EN 300 401 §14.8 for
// transmission modes I, II and IV: row p selects which of the 8 carrier
// groups b carry energy for pattern number p.
var patternTM124 = [NumPatterns][8]int{
	{0, 0, 0, 0, 1, 1, 1, 1},
	{0, 0, 0, 1, 0, 1, 1, 1},
	{0, 0, 0, 1, 1, 0, 1, 1},
	{0, 0, 0, 1, 1, 1, 0, 1},
	{0, 0, 0, 1, 1, 1, 1, 0},
	{0, 0, 1, 0, 0, 1, 1, 1},
	{0, 0, 1, 0, 1, 0, 1, 1},
	{0, 0, 1, 0, 1, 1, 0, 1},
	{0, 0, 1, 0, 1, 1, 1, 0},
	{0, 0, 1, 1, 0, 0, 1, 1},
	{0, 0, 1, 1, 0, 1, 0, 1},
	{0, 0, 1, 1, 0, 1, 1, 0},
	{0, 0, 1, 1, 1, 0, 0, 1},
	{0, 0, 1, 1, 1, 0, 1, 0},
	{0, 0, 1, 1, 1, 1, 0, 0},
	{0, 1, 0, 0, 0, 1, 1, 1},
	{0, 1, 0, 0, 1, 0, 1, 1},
	{0, 1, 0, 0, 1, 1, 0, 1},
	{0, 1, 0, 0, 1, 1, 1, 0},
	{0, 1, 0, 1, 0, 0, 1, 1},
	{0, 1, 0, 1, 0, 1, 0, 1},
	{0, 1, 0, 1, 0, 1, 1, 0},
	{0, 1, 0, 1, 1, 0, 0, 1},
	{0, 1, 0, 1, 1, 0, 1, 0},
	{0, 1, 0, 1, 1, 1, 0, 0},
	{0, 1, 1, 0, 0, 0, 1, 1},
	{0, 1, 1, 0, 0, 1, 0, 1},
	{0, 1, 1, 0, 0, 1, 1, 0},
	{0, 1, 1, 0, 1, 0, 0, 1},
	{0, 1, 1, 0, 1, 0, 1, 0},
	{0, 1, 1, 0, 1, 1, 0, 0},
	{0, 1, 1, 1, 0, 0, 0, 1},
	{0, 1, 1, 1, 0, 0, 1, 0},
	{0, 1, 1, 1, 0, 1, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{1, 0, 0, 0, 1, 0, 1, 1},
	{1, 0, 0, 0, 1, 1, 0, 1},
	{1, 0, 0, 0, 1, 1, 1, 0},
	{1, 0, 0, 1, 0, 0, 1, 1},
	{1, 0, 0, 1, 0, 1, 0, 1},
	{1, 0, 0, 1, 0, 1, 1, 0},
	{1, 0, 0, 1, 1, 0, 0, 1},
	{1, 0, 0, 1, 1, 0, 1, 0},
	{1, 0, 0, 1, 1, 1, 0, 0},
	{1, 0, 1, 0, 0, 0, 1, 1},
	{1, 0, 1, 0, 0, 1, 0, 1},
	{1, 0, 1, 0, 0, 1, 1, 0},
	{1, 0, 1, 0, 1, 0, 0, 1},
	{1, 0, 1, 0, 1, 0, 1, 0},
	{1, 0, 1, 0, 1, 1, 0, 0},
	{1, 0, 1, 1, 0, 0, 0, 1},
	{1, 0, 1, 1, 0, 0, 1, 0},
	{1, 0, 1, 1, 0, 1, 0, 0},
	{1, 0, 1, 1, 1, 0, 0, 0},
	{1, 1, 0, 0, 0, 0, 1, 1},
	{1, 1, 0, 0, 0, 1, 0, 1},
	{1, 1, 0, 0, 0, 1, 1, 0},
	{1, 1, 0, 0, 1, 0, 0, 1},
	{1, 1, 0, 0, 1, 0, 1, 0},
	{1, 1, 0, 0, 1, 1, 0, 0},
	{1, 1, 0, 1, 0, 0, 0, 1},
	{1, 1, 0, 1, 0, 0, 1, 0},
	{1, 1, 0, 1, 0, 1, 0, 0},
	{1, 1, 0, 1, 1, 0, 0, 0},
	{1, 1, 1, 0, 0, 0, 0, 1},
	{1, 1, 1, 0, 0, 0, 1, 0},
	{1, 1, 1, 0, 0, 1, 0, 0},
	{1, 1, 1, 0, 1, 0, 0, 0},
	{1, 1, 1, 1, 0, 0, 0, 0},
}

// Generator produces the TII null-symbol carrier pattern for a configured
// (comb, pattern), in either the standards-correct or legacy variant. Only
// transmission modes I (1536 carriers) and II (384 carriers) carry TII.
type Generator struct {
	carriers   int
	comb       int
	pattern    int
	oldVariant bool

	// acp is A_{c,p}(k) mapped onto carrier-buffer indices: acp[i] true
	// means carriers i and i+1 form an active pair. A_{c,p}(k) and
	// A_{c,p}(k-1) are never both true, so pairs never overlap.
	acp []bool
}

// New builds a Generator for a mode with the given carrier count. comb must
// be in [0,23] and pattern in [0,69]; carriers must be 1536 (mode I) or
// 384 (mode II).
func New(carriers, comb, pattern int, oldVariant bool) (*Generator, error) {
	if carriers != 1536 && carriers != 384 {
		return nil, fmt.Errorf("tii: no TII pattern defined for %d carriers", carriers)
	}
	if comb < 0 || comb >= NumCombs {
		return nil, fmt.Errorf("tii: comb %d out of range [0,%d)", comb, NumCombs)
	}
	if pattern < 0 || pattern >= NumPatterns {
		return nil, fmt.Errorf("tii: pattern %d out of range [0,%d)", pattern, NumPatterns)
	}
	g := &Generator{carriers: carriers, comb: comb, pattern: pattern, oldVariant: oldVariant}
	g.preparePattern()
	return g, nil
}

// Set reconfigures the generator's comb and pattern, with the same range
// checks as New, and rebuilds the carrier pattern.
func (g *Generator) Set(comb, pattern int) error {
	if comb < 0 || comb >= NumCombs {
		return fmt.Errorf("tii: comb %d out of range [0,%d)", comb, NumCombs)
	}
	if pattern < 0 || pattern >= NumPatterns {
		return fmt.Errorf("tii: pattern %d out of range [0,%d)", pattern, NumPatterns)
	}
	if comb == g.comb && pattern == g.pattern {
		return nil
	}
	g.comb, g.pattern = comb, pattern
	g.preparePattern()
	return nil
}

// SetOldVariant switches between the standards-correct and legacy carrier
// pair phases.
func (g *Generator) SetOldVariant(old bool) { g.oldVariant = old }

// ShouldTransmit reports whether TII is carried on the null symbol of the
// transmission frame identified by fct: TII injection is phase-aligned
// with framephase (FCT mod 4) 0, i.e. one frame out of every
// four.
func ShouldTransmit(fct int) bool {
	return fct%4 == 0
}

// enableCarrier marks spec carrier number k active. The carrier buffer has
// no DC slot (index 0 is the first negative-most carrier, and positive
// frequencies start right after the last negative one), so positive k are
// shifted down by one relative to the spec's numbering.
func (g *Generator) enableCarrier(k int) {
	ix := g.carriers/2 + k
	if k >= 0 {
		ix--
	}
	if ix < 0 || ix+1 >= len(g.acp) {
		return
	}
	g.acp[ix] = true
}

// preparePattern rebuilds A_{c,p} for the current comb and pattern. The
// loops are written the same way ETSI EN 300 401 §14.8 states the carrier
// equations rather than solved for k, since this runs only on
// reconfiguration.
func (g *Generator) preparePattern() {
	g.acp = make([]bool, g.carriers)
	comb := g.comb
	pattern := patternTM124[g.pattern]

	if g.carriers == 1536 {
		for k := -768; k < -384; k++ {
			for b := 0; b < 8; b++ {
				if k == -768+2*comb+48*b && pattern[b] != 0 {
					g.enableCarrier(k)
				}
			}
		}
		for k := -384; k < 0; k++ {
			for b := 0; b < 8; b++ {
				if k == -384+2*comb+48*b && pattern[b] != 0 {
					g.enableCarrier(k)
				}
			}
		}
		for k := 1; k <= 384; k++ {
			for b := 0; b < 8; b++ {
				if k == 1+2*comb+48*b && pattern[b] != 0 {
					g.enableCarrier(k)
				}
			}
		}
		for k := 385; k <= 768; k++ {
			for b := 0; b < 8; b++ {
				if k == 385+2*comb+48*b && pattern[b] != 0 {
					g.enableCarrier(k)
				}
			}
		}
		return
	}

	// Mode II (384 carriers).
	for k := -192; k <= 192; k++ {
		for b := 0; b < 4; b++ {
			if k == -192+2*comb+48*b && pattern[b] != 0 {
				g.enableCarrier(k)
			}
		}
		for b := 4; b < 8; b++ {
			if k == -191+2*comb+48*b && pattern[b] != 0 {
				g.enableCarrier(k)
			}
		}
	}
}

// NullSymbolCarriers returns the carriers (length g.carriers) to feed into
// the OFDM assembler's null-symbol IFFT when TII is active on this
// transmission frame. in is the phase reference carrier vector the pair
// phasors are drawn from; everything outside the active pairs is zero. In
// the standards-correct variant both members of an active pair carry the
// same phasor in[i]; the legacy variant keeps in[i+1] on the second
// member, for old receivers that expect that behaviour.
//
// Amplitude is not rescaled here: per ETSI TR 101 496-3 clause 5.4.2.2 the
// 16 dB power ratio versus data symbols arises from activating only 32 of
// the carriers.
func (g *Generator) NullSymbolCarriers(in []complex64) []complex64 {
	out := make([]complex64, g.carriers)
	if len(in) < g.carriers {
		return out
	}
	for i, active := range g.acp {
		if !active {
			continue
		}
		out[i] = in[i]
		if g.oldVariant {
			out[i+1] = in[i+1]
		} else {
			out[i+1] = in[i]
		}
	}
	return out
}

// ActivePairBases returns the carrier-buffer indices i where an active
// pair {i, i+1} starts, in ascending order.
func (g *Generator) ActivePairBases() []int {
	var bases []int
	for i, active := range g.acp {
		if active {
			bases = append(bases, i)
		}
	}
	return bases
}

// ActiveCarrierCount reports how many of g.carriers are non-zero in the
// pattern NullSymbolCarriers produces.
func (g *Generator) ActiveCarrierCount() int {
	n := 0
	for _, active := range g.acp {
		if active {
			n += 2
		}
	}
	return n
}
