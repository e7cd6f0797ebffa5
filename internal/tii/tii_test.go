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

package tii

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// refIn builds an input carrier vector where every slot carries a distinct
// non-zero phasor, so the tests can tell which input index a pair member
// was copied from.
func refIn(carriers int) []complex64 {
	in := make([]complex64, carriers)
	for i := range in {
		in[i] = complex(float32(i+1), -float32(i+1))
	}
	return in
}

func TestNewRejectsUnsupportedCarrierCount(t *testing.T) {
	_, err := New(192, 0, 0, false)
	require.Error(t, err)
	_, err = New(768, 0, 0, false)
	require.Error(t, err)
}

func TestNewRejectsOutOfRangeComb(t *testing.T) {
	_, err := New(1536, -1, 0, false)
	require.Error(t, err)
	_, err = New(1536, NumCombs, 0, false)
	require.Error(t, err)
}

func TestNewRejectsOutOfRangePattern(t *testing.T) {
	_, err := New(1536, 0, -1, false)
	require.Error(t, err)
	_, err = New(1536, 0, NumPatterns, false)
	require.Error(t, err)
}

func TestShouldTransmitOneOfFour(t *testing.T) {
	require.True(t, ShouldTransmit(0))
	require.False(t, ShouldTransmit(1))
	require.False(t, ShouldTransmit(2))
	require.False(t, ShouldTransmit(3))
	require.True(t, ShouldTransmit(4))
}

// Mode I, comb=0, pattern=0 ({0,0,0,0,1,1,1,1}): only carrier groups
// b=4..7 of each k-range are active, so the spec carrier numbers are
// k = base + 48b with bases -768, -384, 1 and 385. Mapped onto the
// DC-free carrier buffer (ix = 768 + k, minus one for positive k), the
// expected pair bases follow.
func TestPatternMatchesCarrierFormulaModeI(t *testing.T) {
	g, err := New(1536, 0, 0, false)
	require.NoError(t, err)

	want := []int{
		// k = -768 + 48b, b=4..7: -576, -528, -480, -432
		192, 240, 288, 336,
		// k = -384 + 48b, b=4..7: -192, -144, -96, -48
		576, 624, 672, 720,
		// k = 1 + 48b, b=4..7: 193, 241, 289, 337
		960, 1008, 1056, 1104,
		// k = 385 + 48b, b=4..7: 577, 625, 673, 721
		1344, 1392, 1440, 1488,
	}
	require.Equal(t, want, g.ActivePairBases())
	require.Equal(t, 32, g.ActiveCarrierCount())
}

func TestNullSymbolCarriersOnlyHasActivePairsNonZero(t *testing.T) {
	g, err := New(1536, 0, 0, false)
	require.NoError(t, err)
	out := g.NullSymbolCarriers(refIn(1536))

	active := make(map[int]bool)
	for _, base := range g.ActivePairBases() {
		active[base] = true
		active[base+1] = true
	}
	for i, c := range out {
		if active[i] {
			require.NotZero(t, c, "carrier %d should be active", i)
		} else {
			require.Zero(t, c, "carrier %d should be silent", i)
		}
	}
	require.Len(t, active, 32)
}

func TestStandardsCorrectVariantCopiesFirstPhasorToBoth(t *testing.T) {
	g, err := New(1536, 5, 10, false)
	require.NoError(t, err)
	in := refIn(1536)
	out := g.NullSymbolCarriers(in)
	for _, base := range g.ActivePairBases() {
		require.Equal(t, in[base], out[base])
		require.Equal(t, in[base], out[base+1])
	}
}

func TestLegacyVariantKeepsSecondPhasor(t *testing.T) {
	g, err := New(1536, 5, 10, true)
	require.NoError(t, err)
	in := refIn(1536)
	out := g.NullSymbolCarriers(in)
	for _, base := range g.ActivePairBases() {
		require.Equal(t, in[base], out[base])
		require.Equal(t, in[base+1], out[base+1])
	}
}

func TestDifferentCombsSelectDifferentCarriers(t *testing.T) {
	g0, err := New(1536, 0, 0, false)
	require.NoError(t, err)
	g1, err := New(1536, 1, 0, false)
	require.NoError(t, err)
	require.NotEqual(t, g0.ActivePairBases(), g1.ActivePairBases())
}

// In mode II only one k-range exists and each pattern always has four of
// its eight groups set, so four pairs (eight carriers) are active; the
// 1:48 carrier ratio is restored by the time-domain repetition of the
// shorter null symbol.
func TestModeIIPatternHasFourActivePairs(t *testing.T) {
	g, err := New(384, 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, 8, g.ActiveCarrierCount())
	require.Len(t, g.ActivePairBases(), 4)
}
