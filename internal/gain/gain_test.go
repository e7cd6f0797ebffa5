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

package gain

import (
	"testing"

	"github.com/sdrnet/dabmod/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFixModeIsConstant(t *testing.T) {
	c, err := New(4, config.GainModeFix, 1.0, 0)
	require.NoError(t, err)
	in := []complex64{1, 2, 3, 4}
	out := make([]complex64, 4)
	g, err := c.Process(in, out)
	require.NoError(t, err)
	require.Equal(t, 512.0, g)
}

func TestMaxModeNormalisesPeak(t *testing.T) {
	c, err := New(4, config.GainModeMax, 1.0, 0)
	require.NoError(t, err)
	in := []complex64{complex(0, 0), complex(2, -1), complex(0, 0), complex(-3, 0)}
	out := make([]complex64, 4)
	g, err := c.Process(in, out)
	require.NoError(t, err)
	require.InDelta(t, fullScale/3.0, g, 1e-6)
}

func TestVarModeHandlesZeroVarianceWithoutDividingByZero(t *testing.T) {
	c, err := New(4, config.GainModeVar, 1.0, 4.0)
	require.NoError(t, err)
	in := make([]complex64, 4)
	out := make([]complex64, 4)
	g, err := c.Process(in, out)
	require.NoError(t, err)
	require.Equal(t, 1.0, g)
}

// Real-axis deviation 1, imaginary-axis deviation 3: the merged sigma is
// their mean (2), scaled by the variance factor before dividing into full
// scale.
func TestVarModeAveragesAxisDeviations(t *testing.T) {
	c, err := New(4, config.GainModeVar, 1.0, 4.0)
	require.NoError(t, err)
	in := []complex64{complex(1, 3), complex(-1, -3), complex(1, 3), complex(-1, -3)}
	out := make([]complex64, 4)
	g, err := c.Process(in, out)
	require.NoError(t, err)
	require.InDelta(t, fullScale/8.0, g, 1e-6)
}

func TestProcessRejectsNonMultipleFrameSize(t *testing.T) {
	c, err := New(4, config.GainModeFix, 1.0, 0)
	require.NoError(t, err)
	_, err = c.Process(make([]complex64, 5), make([]complex64, 5))
	require.Error(t, err)
}

func TestInvalidModeRejected(t *testing.T) {
	_, err := New(4, config.GainMode("bogus"), 1.0, 0)
	require.Error(t, err)
}
