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

package sampleformat

import (
	"encoding/binary"
	"testing"

	"github.com/sdrnet/dabmod/internal/config"
	"github.com/stretchr/testify/require"
)

// decodeS16Real returns the real (first int16) component of the n-th
// 4-byte s16 sample in b.
func decodeS16Real(b []byte, n int) int16 {
	off := n * 4
	return int16(binary.LittleEndian.Uint16(b[off : off+2]))
}

func TestS16ClippingSaturatesAndCounts(t *testing.T) {
	c, err := New(config.FormatS16)
	require.NoError(t, err)

	inputs := []float32{1.5, -2.0, 0.0, 32767.0, -40000.0}
	samples := make([]complex64, len(inputs))
	for i, v := range inputs {
		samples[i] = complex(v, v)
	}

	out := c.Convert(nil, samples)
	require.Len(t, out, len(inputs)*4)

	want := []int16{1, -2, 0, 32767, -32768}
	for i, w := range want {
		require.Equal(t, w, decodeS16Real(out, i), "sample %d", i)
	}
	require.EqualValues(t, 2, c.Clipped())
}

func TestComplexFloatPassesThroughUnchanged(t *testing.T) {
	c, err := New(config.FormatComplexFloat)
	require.NoError(t, err)
	out := c.Convert(nil, []complex64{complex(1.25, -3.5)})
	require.Len(t, out, 8)
	require.EqualValues(t, 0, c.Clipped())
}

func TestIdempotenceOnExactlyRepresentableValue(t *testing.T) {
	c, err := New(config.FormatS16)
	require.NoError(t, err)
	out := c.Convert(nil, []complex64{complex(100, -100)})
	require.EqualValues(t, 0, c.Clipped())
	require.Equal(t, int16(100), decodeS16Real(out, 0))
}

func TestU8OffsetsAroundMidpoint(t *testing.T) {
	c, err := New(config.FormatU8)
	require.NoError(t, err)
	out := c.Convert(nil, []complex64{complex(0, 0)})
	require.Equal(t, []byte{128, 128}, out)
}

func TestUnknownFormatRejected(t *testing.T) {
	_, err := New(config.SampleFormat("bogus"))
	require.Error(t, err)
}

func TestBytesPerSample(t *testing.T) {
	n, err := BytesPerSample(config.FormatComplexFloat)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	n, err = BytesPerSample(config.FormatS16)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	n, err = BytesPerSample(config.FormatS8)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
