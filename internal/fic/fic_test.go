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

package fic

import (
	"testing"

	"github.com/sdrnet/dabmod/internal/conv"
	"github.com/stretchr/testify/require"
)

// Energy dispersal turns an all-zero FIC into the PRBS itself, so the coded
// output is the punctured mother code of that sequence, not zeros:
// (768 + 6 tail bits) x 4 mother bits, 3 of every 4 kept = 2322 bits.
func TestProcessZeroFICProducesCodedDispersalSequence(t *testing.T) {
	e := NewEncoder()
	out := e.Process(make([]byte, 96))
	want := conv.NewPuncturer(4, 3).Puncture(conv.Encode(conv.EnergyDisperse(make([]byte, 96*8))))
	require.Len(t, out, 2322)
	require.Equal(t, want, out)
}

func TestProcessIsDeterministic(t *testing.T) {
	e := NewEncoder()
	fic := make([]byte, 128)
	for i := range fic {
		fic[i] = byte(i * 7)
	}
	require.Equal(t, e.Process(fic), e.Process(fic))
}
