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

// Package gain implements the digital gain control stage: each OFDM-domain
// frame of complex samples is scaled towards the SDR device's full-scale
// range under one of three strategies.
package gain

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/sdrnet/dabmod/internal/config"
)

// fullScale is the 0x7fff normalisation target: gain modes aim to fill a
// 16-bit signed range even though the stage itself always operates on
// complex64 samples.
const fullScale = 0x7fff

// Control applies one of the fix/max/var gain strategies to successive
// frames of identical length.
type Control struct {
	frameSize int
	mode      config.GainMode
	digital   float64
	varFactor float64
}

// New builds a Control for frames of frameSize complex samples.
func New(frameSize int, mode config.GainMode, digital, varFactor float64) (*Control, error) {
	switch mode {
	case config.GainModeFix, config.GainModeMax, config.GainModeVar:
	default:
		return nil, fmt.Errorf("gain: unknown mode %q", mode)
	}
	if varFactor <= 0 {
		varFactor = 4.0
	}
	return &Control{frameSize: frameSize, mode: mode, digital: digital, varFactor: varFactor}, nil
}

// SetDigital updates the digital gain factor applied on top of the
// per-frame computed gain.
func (c *Control) SetDigital(v float64) { c.digital = v }

// SetMode switches the gain strategy; an unknown mode is ignored.
func (c *Control) SetMode(mode config.GainMode) {
	switch mode {
	case config.GainModeFix, config.GainModeMax, config.GainModeVar:
		c.mode = mode
	}
}

// SetVarianceFactor updates the var-mode normalisation factor; values <= 0
// are ignored.
func (c *Control) SetVarianceFactor(v float64) {
	if v > 0 {
		c.varFactor = v
	}
}

// Process scales in into out, which must have the same length, a multiple
// of the control's frame size. It returns the gain applied to the final
// frame, exposed so a caller can publish it as a read-only runtime
// parameter.
func (c *Control) Process(in, out []complex64) (float64, error) {
	if len(in) != len(out) {
		return 0, fmt.Errorf("gain: in/out length mismatch %d/%d", len(in), len(out))
	}
	if c.frameSize <= 0 || len(in)%c.frameSize != 0 {
		return 0, fmt.Errorf("gain: input size %d not a multiple of frame size %d", len(in), c.frameSize)
	}

	var lastGain float64
	for off := 0; off < len(in); off += c.frameSize {
		frame := in[off : off+c.frameSize]
		g := c.computeGain(frame) * c.digital
		lastGain = g
		dst := out[off : off+c.frameSize]
		gf := float32(g)
		for i, s := range frame {
			dst[i] = complex64(complex(real(s)*gf, imag(s)*gf))
		}
	}
	return lastGain, nil
}

func (c *Control) computeGain(frame []complex64) float64 {
	switch c.mode {
	case config.GainModeFix:
		return computeGainFix()
	case config.GainModeMax:
		return computeGainMax(frame)
	default:
		return c.computeGainVar(frame)
	}
}

// computeGainFix is the constant-gain strategy: 512, before the caller's
// digital factor.
func computeGainFix() float64 {
	return 512.0
}

// computeGainMax normalises against the peak absolute real/imag component
// seen in the frame.
func computeGainMax(frame []complex64) float64 {
	min := math.MaxFloat64
	max := -math.MaxFloat64
	for _, s := range frame {
		re, im := float64(real(s)), float64(imag(s))
		if re < min {
			min = re
		}
		if re > max {
			max = re
		}
		if im < min {
			min = im
		}
		if im > max {
			max = im
		}
	}
	peak := -min
	if max > peak {
		peak = max
	}
	if peak == 0 {
		return 1.0
	}
	return fullScale / peak
}

// computeGainVar normalises against the variance-factor multiple of the
// frame's sample standard deviation, with the real and imaginary axes
// merged by averaging their deviations.
//
// The plain two-pass standard deviation is computed here, dividing only
// when it is non-zero; a Welford-style running update converges to the
// same value and buys nothing for a fixed-size frame.
func (c *Control) computeGainVar(frame []complex64) float64 {
	n := float64(len(frame))
	if n == 0 {
		return 1.0
	}
	var meanRe, meanIm float64
	for _, s := range frame {
		meanRe += float64(real(s))
		meanIm += float64(imag(s))
	}
	meanRe /= n
	meanIm /= n

	var varRe, varIm float64
	for _, s := range frame {
		dr := float64(real(s)) - meanRe
		di := float64(imag(s)) - meanIm
		varRe += dr * dr
		varIm += di * di
	}
	devRe := math.Sqrt(varRe / n)
	devIm := math.Sqrt(varIm / n)

	denom := (devRe + devIm) / 2 * c.varFactor
	if denom == 0 {
		return 1.0
	}
	return fullScale / denom
}

// Peak returns the largest magnitude sample in frame.
func Peak(frame []complex64) float64 {
	max := 0.0
	for _, s := range frame {
		if m := cmplx.Abs(complex128(s)); m > max {
			max = m
		}
	}
	return max
}
