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

// Package sampleformat implements the output format converter: it turns floating-point complex samples
// (the OFDM pipeline's native representation) into the SDR output wire
// formats complexf/s16/s8/u8, saturating on overflow and counting clipped
// samples.
package sampleformat

import (
	"fmt"
	"math"

	"github.com/sdrnet/dabmod/internal/config"
)

// BytesPerSample returns the wire size, in bytes, of one complex sample in
// format f: 8 for complexf (two float32), 4 for s16 (two int16), 2 for s8/u8
// (two bytes).
func BytesPerSample(f config.SampleFormat) (int, error) {
	switch f {
	case config.FormatComplexFloat:
		return 8, nil
	case config.FormatS16:
		return 4, nil
	case config.FormatS8, config.FormatU8:
		return 2, nil
	default:
		return 0, fmt.Errorf("sampleformat: unknown format %q", f)
	}
}

// Converter converts a stream of complex64 samples into one SampleFormat's
// wire bytes, little-endian, accumulating a running clipped-sample count.
type Converter struct {
	format  config.SampleFormat
	clipped uint64
}

// New returns a Converter for the given wire format.
func New(format config.SampleFormat) (*Converter, error) {
	if _, err := BytesPerSample(format); err != nil {
		return nil, err
	}
	return &Converter{format: format}, nil
}

// Clipped returns the total number of saturated I/Q components seen across
// every Convert call so far.
func (c *Converter) Clipped() uint64 { return c.clipped }

// Convert appends samples' wire representation to the end of dst and
// returns the extended slice.
func (c *Converter) Convert(dst []byte, samples []complex64) []byte {
	switch c.format {
	case config.FormatComplexFloat:
		return c.convertComplexFloat(dst, samples)
	case config.FormatS16:
		return c.convertS16(dst, samples)
	case config.FormatS8:
		return c.convertInt8(dst, samples, -128, 127)
	case config.FormatU8:
		return c.convertUint8(dst, samples)
	default:
		return dst
	}
}

func (c *Converter) convertComplexFloat(dst []byte, samples []complex64) []byte {
	for _, s := range samples {
		dst = appendFloat32LE(dst, real(s))
		dst = appendFloat32LE(dst, imag(s))
	}
	return dst
}

func appendFloat32LE(dst []byte, f float32) []byte {
	bits := math.Float32bits(f)
	return append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

func (c *Converter) convertS16(dst []byte, samples []complex64) []byte {
	for _, s := range samples {
		re := c.saturate(float64(real(s)), -32768, 32767)
		im := c.saturate(float64(imag(s)), -32768, 32767)
		dst = append(dst, byte(int16(re)), byte(int16(re)>>8))
		dst = append(dst, byte(int16(im)), byte(int16(im)>>8))
	}
	return dst
}

func (c *Converter) convertInt8(dst []byte, samples []complex64, lo, hi float64) []byte {
	for _, s := range samples {
		re := c.saturate(float64(real(s)), lo, hi)
		im := c.saturate(float64(imag(s)), lo, hi)
		dst = append(dst, byte(int8(re)), byte(int8(im)))
	}
	return dst
}

// convertUint8 maps the signed full-scale range onto u8 by adding a 128
// offset, saturating in the signed domain before the offset is applied.
func (c *Converter) convertUint8(dst []byte, samples []complex64) []byte {
	for _, s := range samples {
		re := c.saturate(float64(real(s)), -128, 127)
		im := c.saturate(float64(imag(s)), -128, 127)
		dst = append(dst, byte(int8(re))+128, byte(int8(im))+128)
	}
	return dst
}

// saturate truncates v towards zero and clamps it to [lo, hi], incrementing
// the clip counter whenever clamping changed the value. A value already
// representable without saturation round-trips exactly, so the counter
// only increments on genuine clipping; the narrowing conversion truncates
// rather than rounds.
func (c *Converter) saturate(v, lo, hi float64) float64 {
	r := math.Trunc(v)
	if r < lo {
		c.clipped++
		return lo
	}
	if r > hi {
		c.clipped++
		return hi
	}
	return r
}
