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

// Package firfilter implements the optional spectral-shaping filter: a
// real-coefficient symmetric FIR applied to the I and Q rails of a complex
// sample stream independently, run in its own worker goroutine so that the
// one-frame pipeline delay it introduces is isolated from the scheduler's
// main frame loop.
package firfilter

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// Taps is an immutable set of real FIR coefficients, swapped in whole by
// SetTaps so DSP readers never observe a partially updated filter.
type Taps []float64

// LoadTapsFile parses a tap file: the first whitespace-separated integer
// is the tap count, followed by that many floating-point coefficients.
func LoadTapsFile(path string) (Taps, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("firfilter: opening taps file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)

	readToken := func() (string, bool) {
		for sc.Scan() {
			tok := sc.Text()
			if tok != "" {
				return tok, true
			}
		}
		return "", false
	}

	countTok, ok := readToken()
	if !ok {
		return nil, fmt.Errorf("firfilter: taps file %s is empty", path)
	}
	n, err := strconv.Atoi(countTok)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("firfilter: invalid tap count in %s: %q", path, countTok)
	}

	taps := make(Taps, n)
	for i := 0; i < n; i++ {
		tok, ok := readToken()
		if !ok {
			return nil, fmt.Errorf("firfilter: expected %d taps, got %d", n, i)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("firfilter: invalid tap value %q: %w", tok, err)
		}
		taps[i] = v
	}
	return taps, nil
}

// Filter applies FIR convolution to the I and Q rails of a complex64 stream
// independently, carrying trailing history across successive Apply calls so
// filtering stays continuous across frame boundaries.
type Filter struct {
	taps    Taps
	histRe  []float64
	histIm  []float64
}

// New builds a Filter with a zeroed history buffer, ready to process a
// stream of frames in order.
func New(taps Taps) *Filter {
	return &Filter{
		taps:   taps,
		histRe: make([]float64, len(taps)-1),
		histIm: make([]float64, len(taps)-1),
	}
}

// SetTaps swaps in a new coefficient vector. The history buffer is resized
// (and, if the tap count changed, reset) so that Apply never indexes out of
// bounds. It is not safe to call concurrently with Apply: Stage.SetTaps
// calls it under the same mutex the worker holds around Apply.
func (f *Filter) SetTaps(taps Taps) {
	if len(taps) != len(f.taps) {
		f.histRe = make([]float64, len(taps)-1)
		f.histIm = make([]float64, len(taps)-1)
	}
	f.taps = taps
}

// Apply filters in (length n) into a freshly allocated output of the same
// length, updating the filter's history for the next call.
func (f *Filter) Apply(in []complex64) []complex64 {
	n := len(in)
	out := make([]complex64, n)

	re := make([]float64, len(f.histRe)+n)
	im := make([]float64, len(f.histIm)+n)
	copy(re, f.histRe)
	copy(im, f.histIm)
	for i, s := range in {
		re[len(f.histRe)+i] = float64(real(s))
		im[len(f.histIm)+i] = float64(imag(s))
	}

	ntaps := len(f.taps)
	for i := 0; i < n; i++ {
		var accRe, accIm float64
		for k := 0; k < ntaps; k++ {
			accRe += f.taps[k] * re[i+ntaps-1-k]
			accIm += f.taps[k] * im[i+ntaps-1-k]
		}
		out[i] = complex64(complex(accRe, accIm))
	}

	if len(f.histRe) > 0 {
		copy(f.histRe, re[n:])
		copy(f.histIm, im[n:])
	}
	return out
}
