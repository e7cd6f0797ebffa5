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

package predistort

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "coefs.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadPolynomialVariant(t *testing.T) {
	path := writeFile(t, "1\n1 0 0 0 0\n0 0 0 0 0\n")
	v, err := LoadCoefFile(path)
	require.NoError(t, err)
	require.Equal(t, KindPolynomial, v.Kind)
	require.Equal(t, [5]float64{1, 0, 0, 0, 0}, v.AMCoefs)
}

func TestIdentityPolynomialLeavesSamplesUnchanged(t *testing.T) {
	path := writeFile(t, "1\n1 0 0 0 0\n0 0 0 0 0\n")
	v, err := LoadCoefFile(path)
	require.NoError(t, err)

	x := complex64(complex(0.5, -0.25))
	out := v.applyOne(x)
	require.InDelta(t, real(x), real(out), 1e-9)
	require.InDelta(t, imag(x), imag(out), 1e-9)
}

func TestLoadLUTVariant(t *testing.T) {
	contents := "2\n1.0\n"
	for i := 0; i < 32; i++ {
		contents += "1 0\n"
	}
	path := writeFile(t, contents)
	v, err := LoadCoefFile(path)
	require.NoError(t, err)
	require.Equal(t, KindLUT, v.Kind)
	for _, e := range v.LUT {
		require.Equal(t, complex(1, 0), e)
	}
}

func TestLUTIdentityTableLeavesSamplesUnchanged(t *testing.T) {
	contents := "2\n1.0\n"
	for i := 0; i < 32; i++ {
		contents += "1 0\n"
	}
	path := writeFile(t, contents)
	v, err := LoadCoefFile(path)
	require.NoError(t, err)

	x := complex64(complex(0.3, 0.4))
	out := v.applyOne(x)
	require.InDelta(t, real(x), real(out), 1e-9)
	require.InDelta(t, imag(x), imag(out), 1e-9)
}

func TestUnknownVariantTagRejected(t *testing.T) {
	path := writeFile(t, "9\n")
	_, err := LoadCoefFile(path)
	require.Error(t, err)
}

func TestProcessParallelMatchesSerial(t *testing.T) {
	path := writeFile(t, "1\n1 0.1 0 0 0\n0.05 0 0 0 0\n")
	v, err := LoadCoefFile(path)
	require.NoError(t, err)

	frame := make([]complex64, 100)
	for i := range frame {
		frame[i] = complex64(complex(float32(i)*0.01, float32(-i)*0.01))
	}

	serial := make([]complex64, len(frame))
	for i, x := range frame {
		serial[i] = v.applyOne(x)
	}

	parallel, err := v.Process(context.Background(), frame, 8)
	require.NoError(t, err)
	require.Equal(t, serial, parallel)
}
