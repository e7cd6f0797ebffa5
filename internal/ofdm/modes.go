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

// Package ofdm implements the frequency interleaver, QPSK symbol mapper,
// differential modulator, Phase Reference Symbol, and IFFT/guard-interval
// OFDM assembly.
package ofdm

import "fmt"

// Params holds one transmission mode's OFDM geometry.
type Params struct {
	Carriers   int
	Symbols    int // data symbols per transmission frame
	Spacing    int // total per-data-symbol length in samples, including guard
	NullSize   int // null-symbol length in samples
	FFTSize    int // IFFT size (power of two)
}

// ParamsForMode returns the OFDM geometry for mode (1=I .. 4=IV).
func ParamsForMode(mode int) (Params, error) {
	switch mode {
	case 1:
		return Params{Carriers: 1536, Symbols: 76, Spacing: 2552, NullSize: 2656, FFTSize: 2048}, nil
	case 2:
		return Params{Carriers: 384, Symbols: 76, Spacing: 638, NullSize: 664, FFTSize: 512}, nil
	case 3:
		return Params{Carriers: 192, Symbols: 153, Spacing: 319, NullSize: 345, FFTSize: 256}, nil
	case 4:
		return Params{Carriers: 768, Symbols: 76, Spacing: 1276, NullSize: 1328, FFTSize: 1024}, nil
	default:
		return Params{}, fmt.Errorf("ofdm: unknown transmission mode %d", mode)
	}
}

// DataGuardLen is the cyclic-prefix length prepended to every data symbol.
func (p Params) DataGuardLen() int { return p.Spacing - p.FFTSize }

// NullGuardLen is the cyclic-prefix length prepended to the null symbol.
func (p Params) NullGuardLen() int { return p.NullSize - p.FFTSize }

// TransmissionFrameLen is the total sample count of one transmission frame:
// the null symbol followed by Symbols data symbols.
func (p Params) TransmissionFrameLen() int {
	return p.NullSize + p.Symbols*p.Spacing
}
