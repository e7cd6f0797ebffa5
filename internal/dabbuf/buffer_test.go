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

package dabbuf

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestNewLenAndAlignment(t *testing.T) {
	b := New(128)
	require.Equal(t, 128, b.Len())
	require.Len(t, b.Bytes(), 128)
	addr := uintptr(unsafe.Pointer(&b.Bytes()[0]))
	require.Zero(t, addr%alignment)
}

func TestResizeGrowPreservesPrefix(t *testing.T) {
	b := New(4)
	copy(b.Bytes(), []byte{1, 2, 3, 4})
	b.Resize(8)
	require.Equal(t, 8, b.Len())
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes()[:4])
}

func TestResetZeroesWithoutChangingLength(t *testing.T) {
	b := New(4)
	copy(b.Bytes(), []byte{9, 9, 9, 9})
	b.Reset()
	require.Equal(t, []byte{0, 0, 0, 0}, b.Bytes())
	require.Equal(t, 4, b.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(4)
	copy(b.Bytes(), []byte{1, 2, 3, 4})
	c := b.Clone()
	c.Bytes()[0] = 0xFF
	require.Equal(t, byte(1), b.Bytes()[0])
}
