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

package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistersEveryCollector(t *testing.T) {
	m := New()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestCountersAccumulate(t *testing.T) {
	m := New()
	m.SDRFramesSent.Add(3)
	m.SDRLatePackets.Inc()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var framesValue float64
	for _, f := range families {
		if f.GetName() == "dabmod_sdr_frames_total" {
			framesValue = f.Metric[0].GetCounter().GetValue()
		}
	}
	require.Equal(t, 3.0, framesValue)
}
