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

package resampler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveRatio(t *testing.T) {
	_, err := New(0, 1, 16)
	require.Error(t, err)
	_, err = New(1, 0, 16)
	require.Error(t, err)
}

func TestRatioReturnsConfiguredFactor(t *testing.T) {
	r, err := New(3, 2, 16)
	require.NoError(t, err)
	l, m := r.Ratio()
	require.Equal(t, 3, l)
	require.Equal(t, 2, m)
}

func TestUnityRatioApproximatesIdentityLength(t *testing.T) {
	r, err := New(1, 1, 16)
	require.NoError(t, err)
	in := make([]complex64, 16)
	for i := range in {
		in[i] = complex64(complex(float32(i), 0))
	}
	out := r.Process(in)
	require.Len(t, out, 16)
}

func TestUpsampleProducesMoreSamples(t *testing.T) {
	r, err := New(2, 1, 16)
	require.NoError(t, err)
	in := make([]complex64, 16)
	out := r.Process(in)
	require.Len(t, out, 32)
}
