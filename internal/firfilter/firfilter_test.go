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

package firfilter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTapsFileParsesCountThenCoefficients(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taps.txt")
	require.NoError(t, os.WriteFile(path, []byte("3\n0.25 0.5 0.25\n"), 0o600))

	taps, err := LoadTapsFile(path)
	require.NoError(t, err)
	require.Equal(t, Taps{0.25, 0.5, 0.25}, taps)
}

func TestLoadTapsFileRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taps.txt")
	require.NoError(t, os.WriteFile(path, []byte("3\n0.25 0.5\n"), 0o600))

	_, err := LoadTapsFile(path)
	require.Error(t, err)
}

func TestIdentityTapPassesSamplesThroughUnchanged(t *testing.T) {
	f := New(Taps{1.0})
	in := []complex64{1, 2, 3, 4}
	out := f.Apply(in)
	require.Equal(t, in, out)
}

func TestMovingAverageSmoothsAcrossFrameBoundary(t *testing.T) {
	f := New(Taps{0.5, 0.5})
	first := f.Apply([]complex64{complex(2, 0), complex(4, 0)})
	require.Equal(t, complex64(complex(1, 0)), first[0]) // history starts at zero
	require.Equal(t, complex64(complex(3, 0)), first[1])

	second := f.Apply([]complex64{complex(6, 0)})
	require.Equal(t, complex64(complex(5, 0)), second[0]) // carries the 4 from the prior frame
}

func TestStageDelaysOutputByOneFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stage := NewStage(ctx, New(Taps{1.0}), 2)
	defer stage.Close()

	out1 := stage.Submit([]complex64{1, 2})
	require.Equal(t, []complex64{0, 0}, out1)

	out2 := stage.Submit([]complex64{3, 4})
	require.Equal(t, []complex64{1, 2}, out2)

	out3 := stage.Submit([]complex64{5, 6})
	require.Equal(t, []complex64{3, 4}, out3)
}
