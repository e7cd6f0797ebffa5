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

// Package resampler implements the rational L/M output resampler: it
// converts between the OFDM engine's native 2.048 MHz sample rate and a
// configured SDR sample rate via per-block FFT-domain interpolation, reusing
// internal/fft's Transformer.
package resampler

import (
	"fmt"

	"github.com/sdrnet/dabmod/internal/fft"
)

// Resampler upsamples by L and downsamples by M using an FFT-overlap
// method: zero-pad the input block's spectrum by L, inverse-transform to
// interpolate, then decimate every Mth interpolated sample. Each block is
// transformed on its own: no samples overlap or carry over between
// consecutive Process calls. L and M should
// be reduced to lowest terms by the caller (e.g. via gcd) so the FFT sizes
// stay as small as possible.
type Resampler struct {
	l, m     int
	fftIn    fft.Transformer
	fftOut   fft.Transformer
	blockLen int
}

// New builds a Resampler for block-processing inputBlockLen samples at a
// time, resampling by the rational factor l/m. inputBlockLen*l must be
// representable as a power-of-two-padded FFT; New rounds the working FFT
// size up to the next power of two internally.
func New(l, m, inputBlockLen int) (*Resampler, error) {
	if l <= 0 || m <= 0 {
		return nil, fmt.Errorf("resampler: l and m must be positive (got %d/%d)", l, m)
	}
	if inputBlockLen <= 0 {
		return nil, fmt.Errorf("resampler: inputBlockLen must be positive")
	}
	inSize := nextPow2(inputBlockLen)
	outSize := nextPow2(inputBlockLen * l)
	return &Resampler{
		l:        l,
		m:        m,
		fftIn:    fft.New(inSize),
		fftOut:   fft.New(outSize),
		blockLen: inputBlockLen,
	}, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Ratio returns the resampler's rational conversion factor L/M.
func (r *Resampler) Ratio() (l, m int) { return r.l, r.m }

// Process resamples one block of inputBlockLen samples (zero-padded to the
// working FFT size, per the FFT-overlap method's block convention) and
// returns approximately len(in)*l/m output samples.
func (r *Resampler) Process(in []complex64) []complex64 {
	inSize := r.fftIn.Size()
	padded := make([]complex64, inSize)
	copy(padded, in)

	spectrum := make([]complex64, inSize)
	r.fftIn.Forward(padded, spectrum)

	outSize := r.fftOut.Size()
	upspectrum := make([]complex64, outSize)
	half := inSize / 2
	// Place the low-frequency half of the input spectrum at the start and
	// end of the (larger) output spectrum, leaving the middle zero-padded:
	// this is the frequency-domain equivalent of zero-stuffing by L in the
	// time domain, the FFT-overlap interpolation step.
	copy(upspectrum[:half], spectrum[:half])
	copy(upspectrum[outSize-half:], spectrum[half:])

	interpolated := make([]complex64, outSize)
	r.fftOut.Inverse(upspectrum, interpolated)

	scale := float32(r.l)
	for i := range interpolated {
		interpolated[i] *= complex(scale, 0)
	}

	outLen := len(in) * r.l / r.m
	if outLen > outSize {
		outLen = outSize
	}
	out := make([]complex64, outLen)
	for i := range out {
		srcIdx := i * r.m
		if srcIdx >= outSize {
			break
		}
		out[i] = interpolated[srcIdx]
	}
	return out
}
