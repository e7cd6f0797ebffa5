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

package cif

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMuxEmptyProducesAllZeroCIF(t *testing.T) {
	out, err := Mux(nil)
	require.NoError(t, err)
	require.Len(t, out, TotalBits)
	for _, b := range out {
		require.Zero(t, b)
	}
}

func TestMuxPlacesEntryAtStartAddress(t *testing.T) {
	bits := make([]byte, 64)
	for i := range bits {
		bits[i] = 1
	}
	out, err := Mux([]Entry{{StartAddress: 2, Bits: bits}})
	require.NoError(t, err)
	for i := 0; i < 128; i++ {
		require.Zero(t, out[i])
	}
	for i := 128; i < 192; i++ {
		require.Equal(t, byte(1), out[i])
	}
}

func TestMuxRejectsOverflow(t *testing.T) {
	_, err := Mux([]Entry{{StartAddress: 863, Bits: make([]byte, 128)}})
	require.Error(t, err)
}

func TestTotalCUsMatchesInvariant(t *testing.T) {
	require.Equal(t, TotalBits, TotalCUs*CUBits)
}
