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

package conv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeProducesFourTimesTheInput(t *testing.T) {
	bits := make([]byte, 10)
	out := Encode(bits)
	require.Equal(t, (10+constraintLength-1)*4, len(out))
}

func TestEnergyDisperseIsInvolution(t *testing.T) {
	bits := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0}
	scrambled := EnergyDisperse(bits)
	restored := EnergyDisperse(scrambled)
	require.Equal(t, bits, restored)
}

func TestEnergyDisperseIsDeterministic(t *testing.T) {
	bits := make([]byte, 20)
	require.Equal(t, EnergyDisperse(bits), EnergyDisperse(bits))
}

func TestPuncturerRateAndLength(t *testing.T) {
	p := NewPuncturer(4, 2) // rate 1/2
	require.InDelta(t, 0.5, p.Rate(), 1e-9)
	bits := make([]byte, 100)
	out := p.Puncture(bits)
	require.Equal(t, p.OutputLen(100), len(out))
	require.Equal(t, 50, len(out))
}

func TestPuncturerKeepAllWhenGroupEqualsKeep(t *testing.T) {
	p := NewPuncturer(4, 4)
	bits := make([]byte, 8)
	require.Equal(t, 8, len(p.Puncture(bits)))
}
