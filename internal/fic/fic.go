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

// Package fic implements the FIC coding pipeline:
// energy dispersal, the shared rate-1/4 convolutional mother code, and a
// fixed mode-independent puncturing profile (no TPL dependence, since the
// FIC carries multiplex configuration data rather than a subchannel's
// service data).
package fic

import (
	"github.com/sdrnet/dabmod/internal/bitfield"
	"github.com/sdrnet/dabmod/internal/conv"
)

// Encoder codes one ETI frame's FIC payload.
type Encoder struct {
	puncturer *conv.Puncturer
}

// NewEncoder returns an Encoder using the standard FIC puncturing profile
// (overall rate 1/3, EN 300 401 §11.2's fixed FIC protection).
func NewEncoder() *Encoder {
	return &Encoder{puncturer: conv.NewPuncturer(4, 3)}
}

// Process runs one frame's FIC payload (96 or 128 bytes)
// through energy dispersal, convolutional coding and puncturing.
func (e *Encoder) Process(fic []byte) []byte {
	bits := bitfield.Unpack(fic)
	scrambled := conv.EnergyDisperse(bits)
	coded := conv.Encode(scrambled)
	return e.puncturer.Puncture(coded)
}
