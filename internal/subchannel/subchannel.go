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

// Package subchannel implements the per-subchannel coding pipeline:
// energy dispersal, the shared rate-1/4 convolutional mother
// code with puncturing, and the 16-branch convolutional time interleaver.
package subchannel

import (
	"github.com/sdrnet/dabmod/internal/bitfield"
	"github.com/sdrnet/dabmod/internal/conv"
)

// interleaverDepth is the DAB time interleaver's branch count (EN 300 401
// §11.2): branch i delays its bits by i frames, 0..15.
const interleaverDepth = 16

// Source describes one subchannel's coded-data lane: its configured byte length and the puncturing
// profile derived from its TPL. It is created when the ETI reader first
// sees the subchannel's STC entry and destroyed when the STC array changes.
type Source struct {
	SCID      int
	ByteLen   int
	puncturer *conv.Puncturer
	interl    *interleaver
}

// NewSource builds a Source for a subchannel whose STC.TPL selects the given
// puncturing profile, constructing a fresh time interleaver.
func NewSource(scid, byteLen, tpl int) *Source {
	return &Source{
		SCID:      scid,
		ByteLen:   byteLen,
		puncturer: punctureProfileForTPL(tpl),
		interl:    newInterleaver(),
	}
}

// UpdatePuncturing swaps in a new puncturing profile without resetting the
// time interleaver's per-branch history.
func (s *Source) UpdatePuncturing(tpl int) {
	s.puncturer = punctureProfileForTPL(tpl)
}

// Process runs one ETI frame's worth of subchannel bytes through energy
// dispersal, convolutional coding, puncturing and time interleaving,
// returning the coded, interleaved bits (one bit per byte) ready for CIF
// packing.
func (s *Source) Process(payload []byte) []byte {
	bits := bitfield.Unpack(payload)
	scrambled := conv.EnergyDisperse(bits)
	coded := conv.Encode(scrambled)
	punctured := s.puncturer.Puncture(coded)
	return s.interl.Process(punctured)
}

// punctureProfileForTPL maps an STC.TPL field to a code rate, per EN 300 401
// Table 9 (EEP-A protection levels 1..4: rates 1/4, 3/8, 1/2, 3/4); EEP
// gets the rate-matched bit budget, not the exact bit-selection patterns.
// UEP profiles (PI_1..PI_24) are mapped onto one of those four EEP-A
// profiles by their table index modulo 4, so a UEP profile's own code rate
// is not reproduced either.
func punctureProfileForTPL(tpl int) *conv.Puncturer {
	uep := tpl&0x20 != 0
	if uep {
		// UEP: pick an EEP-A profile by the low 5 bits (the table index)
		// modulo 4.
		level := (tpl & 0x1F) % 4
		return eepAProfile(level)
	}
	level := tpl & 0x3
	return eepAProfile(level)
}

// eepAProfile returns the mother-code puncturer approximating EEP-A
// protection level 0..3 (overall code rates 1/4, 3/8, 1/2, 3/4). Since the
// mother code already emits 4 bits per source bit, the fraction of those
// mother bits a rate-R puncturer keeps is 1/(4R): 1.0, 0.667, 0.5, 0.333 for
// the four EEP-A levels respectively.
func eepAProfile(level int) *conv.Puncturer {
	switch level {
	case 0:
		return conv.NewPuncturer(12, 12) // rate 1/4 (keep all mother-code bits)
	case 1:
		return conv.NewPuncturer(12, 8) // rate 3/8
	case 2:
		return conv.NewPuncturer(12, 6) // rate 1/2
	default:
		return conv.NewPuncturer(12, 4) // rate 3/4
	}
}
