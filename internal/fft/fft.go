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

// Package fft provides the transform engine the OFDM stage uses,
// abstracted behind a Transformer interface so the engine is swappable and
// the DSP stages never see plan lifecycle. The only
// implementation is a pure-Go radix-2 Cooley-Tukey transform; all four DAB
// IFFT sizes (2048, 1024, 512, 256 samples) are powers of two.
package fft

import "math"

// Transformer performs forward and inverse FFTs of a fixed size.
type Transformer interface {
	Size() int
	Forward(in, out []complex64)
	Inverse(in, out []complex64)
}

// radix2 is a Transformer backed by an iterative, in-place-free radix-2
// Cooley-Tukey implementation with precomputed twiddle factors and a
// bit-reversal permutation table.
type radix2 struct {
	n          int
	twiddles   []complex128
	bitReverse []int
}

// New returns a Transformer for FFTs of size n, which must be a power of
// two.
func New(n int) Transformer {
	if n <= 0 || n&(n-1) != 0 {
		panic("fft: size must be a power of two")
	}
	t := &radix2{n: n}
	t.twiddles = make([]complex128, n/2)
	for k := 0; k < n/2; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		t.twiddles[k] = complex(math.Cos(angle), math.Sin(angle))
	}
	t.bitReverse = make([]int, n)
	bits := 0
	for (1 << bits) < n {
		bits++
	}
	for i := 0; i < n; i++ {
		t.bitReverse[i] = reverseBits(i, bits)
	}
	return t
}

func reverseBits(v, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

func (t *radix2) Size() int { return t.n }

func (t *radix2) Forward(in, out []complex64) {
	t.transform(in, out, false)
}

func (t *radix2) Inverse(in, out []complex64) {
	t.transform(in, out, true)
}

// transform implements the standard iterative Cooley-Tukey butterfly over a
// complex128 scratch buffer, applying the 1/N scale on inverse transforms.
func (t *radix2) transform(in, out []complex64, inverse bool) {
	n := t.n
	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[t.bitReverse[i]] = complex128(in[i])
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		stride := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				w := t.twiddles[k*stride]
				if inverse {
					w = complex(real(w), -imag(w))
				}
				a := buf[start+k]
				b := buf[start+k+half] * w
				buf[start+k] = a + b
				buf[start+k+half] = a - b
			}
		}
	}

	if inverse {
		scale := 1.0 / float64(n)
		for i, v := range buf {
			out[i] = complex64(complex(real(v)*scale, imag(v)*scale))
		}
	} else {
		for i, v := range buf {
			out[i] = complex64(v)
		}
	}
}
