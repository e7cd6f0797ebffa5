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

import "github.com/sdrnet/dabmod/internal/fft"

// Assembler turns frequency-domain carrier symbols into guard-prefixed
// time-domain OFDM symbols: places active carriers
// into an IFFT input buffer with a DC gap, runs the IFFT, and prepends a
// cyclic guard interval copied from the symbol's tail.
type Assembler struct {
	params Params
	fft    fft.Transformer
}

// NewAssembler builds an Assembler for the given mode parameters.
func NewAssembler(p Params) *Assembler {
	return &Assembler{params: p, fft: fft.New(p.FFTSize)}
}

// mapToIFFTInput places carriers (length p.Carriers) into an FFTSize-long
// buffer: positive carriers in [1, carriers/2], negative carriers in
// [FFTSize-carriers/2, FFTSize), DC and the spectral gap left at zero.
func (a *Assembler) mapToIFFTInput(carriers []complex64) []complex64 {
	buf := make([]complex64, a.params.FFTSize)
	half := a.params.Carriers / 2
	copy(buf[1:1+half], carriers[:half])
	copy(buf[a.params.FFTSize-half:], carriers[half:])
	return buf
}

// DataSymbol produces one guard-prefixed data symbol (length p.Spacing)
// from its active carriers.
func (a *Assembler) DataSymbol(carriers []complex64) []complex64 {
	return a.symbol(carriers, a.params.DataGuardLen(), a.params.Spacing)
}

// NullSymbol produces the guard-prefixed null symbol (length p.NullSize).
// When tiiCarriers is nil the whole symbol is silent; otherwise tiiCarriers
// (length p.Carriers, mostly zero) is IFFT'd the same way a data symbol
// would be.
func (a *Assembler) NullSymbol(tiiCarriers []complex64) []complex64 {
	if tiiCarriers == nil {
		return make([]complex64, a.params.NullSize)
	}
	return a.symbol(tiiCarriers, a.params.NullGuardLen(), a.params.NullSize)
}

func (a *Assembler) symbol(carriers []complex64, guardLen, totalLen int) []complex64 {
	ifftIn := a.mapToIFFTInput(carriers)
	td := make([]complex64, a.params.FFTSize)
	a.fft.Inverse(ifftIn, td)

	out := make([]complex64, totalLen)
	if guardLen > 0 {
		copy(out[:guardLen], td[a.params.FFTSize-guardLen:])
	}
	copy(out[guardLen:], td)
	return out
}
