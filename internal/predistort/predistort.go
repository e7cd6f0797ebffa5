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

// Package predistort implements the optional digital predistorter: an
// inverse-nonlinearity applied in baseband ahead of the RF power
// amplifier, in one of two interchangeable forms selected by the
// coefficient file's leading tag.
package predistort

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Kind distinguishes the two DPD variants, tagged by the coefficient file's
// first integer.
type Kind int

const (
	// KindPolynomial is the odd-only AM/AM + AM/PM polynomial variant.
	KindPolynomial Kind = 1
	// KindLUT is the 32-entry complex lookup-table variant.
	KindLUT Kind = 2
)

const (
	polyCoefCount = 5
	lutSize       = 32
)

// Variant is the parsed, ready-to-apply DPD coefficient set, a tagged
// union over the two kinds.
type Variant struct {
	Kind Kind

	// Polynomial fields (KindPolynomial): amp = sum ampCoefs[i]*|x|^(2i),
	// phase = -sum phaseCoefs[i]*|x|^(2i) (note negation).
	AMCoefs    [polyCoefCount]float64
	PhaseCoefs [polyCoefCount]float64

	// LUT fields (KindLUT): index = bits.LeadingZeros32(round(|x|*Scale)).
	LUT   [lutSize]complex128
	Scale float64
}

// LoadCoefFile parses a DPD coefficient file: the first integer selects
// the variant (1=polynomial, 2=LUT); the remainder is variant-specific.
func LoadCoefFile(path string) (*Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("predistort: opening coefficient file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	next := func() (string, bool) {
		for sc.Scan() {
			if t := sc.Text(); t != "" {
				return t, true
			}
		}
		return "", false
	}
	nextFloat := func() (float64, error) {
		tok, ok := next()
		if !ok {
			return 0, fmt.Errorf("predistort: unexpected end of coefficient file")
		}
		return strconv.ParseFloat(tok, 64)
	}

	tagTok, ok := next()
	if !ok {
		return nil, fmt.Errorf("predistort: empty coefficient file %s", path)
	}
	tag, err := strconv.Atoi(tagTok)
	if err != nil {
		return nil, fmt.Errorf("predistort: invalid variant tag %q: %w", tagTok, err)
	}

	switch Kind(tag) {
	case KindPolynomial:
		v := &Variant{Kind: KindPolynomial}
		for i := 0; i < polyCoefCount; i++ {
			if v.AMCoefs[i], err = nextFloat(); err != nil {
				return nil, fmt.Errorf("predistort: AM/AM coefficient %d: %w", i, err)
			}
		}
		for i := 0; i < polyCoefCount; i++ {
			if v.PhaseCoefs[i], err = nextFloat(); err != nil {
				return nil, fmt.Errorf("predistort: AM/PM coefficient %d: %w", i, err)
			}
		}
		return v, nil

	case KindLUT:
		v := &Variant{Kind: KindLUT, Scale: 1.0}
		if s, err := nextFloat(); err == nil {
			v.Scale = s
		}
		for i := 0; i < lutSize; i++ {
			re, err := nextFloat()
			if err != nil {
				return nil, fmt.Errorf("predistort: LUT entry %d real part: %w", i, err)
			}
			im, err := nextFloat()
			if err != nil {
				return nil, fmt.Errorf("predistort: LUT entry %d imaginary part: %w", i, err)
			}
			v.LUT[i] = complex(re, im)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("predistort: unknown variant tag %d", tag)
	}
}

// applyOne predistorts a single sample according to v's variant.
func (v *Variant) applyOne(x complex64) complex64 {
	switch v.Kind {
	case KindPolynomial:
		return v.applyPolynomial(x)
	case KindLUT:
		return v.applyLUT(x)
	default:
		return x
	}
}

// applyPolynomial implements the odd-only AM/AM + AM/PM polynomial: amp
// and phase are both degree-8 even polynomials in |x|, phase negated,
// output x scaled by amp and rotated by phase using Taylor-series cos/sin
// (degree 6/5).
func (v *Variant) applyPolynomial(x complex64) complex64 {
	mag2 := float64(real(x))*float64(real(x)) + float64(imag(x))*float64(imag(x))

	var amp, phase float64
	pow := 1.0
	for i := 0; i < polyCoefCount; i++ {
		amp += v.AMCoefs[i] * pow
		phase += v.PhaseCoefs[i] * pow
		pow *= mag2
	}
	phase = -phase

	c, s := taylorCosSin(phase)
	rot := complex(c, s)
	scaled := complex(float64(real(x))*amp, float64(imag(x))*amp)
	out := complex128(scaled) * rot
	return complex64(out)
}

// applyLUT implements the complex 32-entry lookup table variant: the
// table index is the count of leading zero bits of the 32-bit unsigned
// rounded, scaled magnitude.
func (v *Variant) applyLUT(x complex64) complex64 {
	mag := math.Hypot(float64(real(x)), float64(imag(x)))
	scaled := mag * v.Scale
	if scaled < 0 {
		scaled = 0
	}
	idx := bits.LeadingZeros32(uint32(math.Round(scaled)))
	if idx >= lutSize {
		idx = lutSize - 1
	}
	return complex64(complex128(x) * v.LUT[idx])
}

// taylorCosSin approximates cos(x) to degree 6 and sin(x) to degree 5 in
// place of math.Cos/Sin.
func taylorCosSin(x float64) (cos, sin float64) {
	x2 := x * x
	cos = 1 - x2/2 + x2*x2/24 - x2*x2*x2/720
	sin = x - x*x2/6 + x*x2*x2/120
	return cos, sin
}

// Process predistorts frame, splitting it into n equal slices processed
// concurrently by a worker pool coordinated with errgroup.
func (v *Variant) Process(ctx context.Context, frame []complex64, workers int) ([]complex64, error) {
	out := make([]complex64, len(frame))
	if workers < 1 {
		workers = 1
	}
	if len(frame) == 0 {
		return out, nil
	}

	chunk := (len(frame) + workers - 1) / workers
	g, _ := errgroup.WithContext(ctx)
	for start := 0; start < len(frame); start += chunk {
		start := start
		end := start + chunk
		if end > len(frame) {
			end = len(frame)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = v.applyOne(frame[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// NumCoefs reports how many coefficients the variant carries: 2*5 for the
// polynomial form, 32 for the LUT.
func (v *Variant) NumCoefs() int {
	if v.Kind == KindLUT {
		return lutSize
	}
	return 2 * polyCoefCount
}

// CoefsString renders the coefficient set for the read-only
// memlesspoly.coefs parameter.
func (v *Variant) CoefsString() string {
	var sb strings.Builder
	if v.Kind == KindLUT {
		fmt.Fprintf(&sb, "lut scale=%g", v.Scale)
		for _, e := range v.LUT {
			fmt.Fprintf(&sb, " %g%+gi", real(e), imag(e))
		}
		return sb.String()
	}
	sb.WriteString("poly am=")
	for i, c := range v.AMCoefs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", c)
	}
	sb.WriteString(" pm=")
	for i, c := range v.PhaseCoefs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", c)
	}
	return sb.String()
}
