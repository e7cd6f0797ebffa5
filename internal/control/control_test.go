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

package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryGetSetRoundTrip(t *testing.T) {
	r := NewRegistry()
	p := NewFloat64Param("gain.digital", 1.0)
	r.Register(p)

	v, err := r.Get("gain.digital")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	require.NoError(t, r.Set("gain.digital", "2.5"))
	require.InDelta(t, 2.5, p.Load(), 1e-9)
}

func TestRegistryUnknownParameter(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	require.ErrorIs(t, err, ErrUnknownParameter)
	require.ErrorIs(t, r.Set("nope", "1"), ErrUnknownParameter)
}

func TestReadOnlyParamRejectsSet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewReadOnlyParam("sdr.underruns", func() string { return "0" }))
	require.ErrorIs(t, r.Set("sdr.underruns", "5"), ErrReadOnly)
}

func TestEnumParamRejectsDisallowedValue(t *testing.T) {
	p := NewEnumParam("gain.mode", "fix", "fix", "max", "var")
	require.Error(t, p.Set("bogus"))
	require.NoError(t, p.Set("var"))
	require.Equal(t, "var", p.Load())
}

func TestIntParamEnforcesRange(t *testing.T) {
	p := NewIntParam("tii.comb", 0, 0, 23)
	require.Error(t, p.Set("24"))
	require.Error(t, p.Set("-1"))
	require.NoError(t, p.Set("12"))
	require.EqualValues(t, 12, p.Load())
}

func TestNamesListsEveryRegisteredParameter(t *testing.T) {
	r := NewRegistry()
	r.Register(NewBoolParam("sdr.muting", false))
	r.Register(NewFloat64Param("gain.digital", 1.0))
	require.ElementsMatch(t, []string{"sdr.muting", "gain.digital"}, r.Names())
}
