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

package eti

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildRawFrame constructs a minimal, syntactically valid raw ETI(NI) frame
// with NST=0, all-zero FIC, and the given FCT/MID/TIST/MNSC.
func buildRawFrame(fct int, mid int, tist uint32, mnsc uint16) []byte {
	buf := make([]byte, RawFrameSize)

	// SYNC: ERR + FSYNC, little-endian word 0x49C5F8FF
	buf[0] = 0xFF
	buf[1] = 0xF8
	buf[2] = 0xC5
	buf[3] = 0x49

	// FC
	buf[4] = byte(fct)
	buf[5] = 0<<1 | 1 // NST=0, FICF=1
	fp := fct % 4
	buf[6] = byte((0 << 5) | ((mid - 1) << 3) | fp)
	buf[7] = 0

	off := 8
	// EOH: MNSC + CRC
	buf[off] = byte(mnsc >> 8)
	buf[off+1] = byte(mnsc)
	off += 4

	ficLen := ficLength(mid)
	off += ficLen // FIC already zeroed

	// EOF
	off += 4

	// TIST
	buf[off] = byte(tist >> 24)
	buf[off+1] = byte(tist >> 16)
	buf[off+2] = byte(tist >> 8)
	buf[off+3] = byte(tist)

	return buf
}

func TestReaderParsesEmptyRawFrame(t *testing.T) {
	r := NewReader()
	r.Feed(buildRawFrame(0, 1, 0, 0))

	res, err := r.Process()
	require.NoError(t, err)
	require.Equal(t, 0, res.FCT)
	require.Equal(t, 1, res.Mode)
	require.Equal(t, 96, len(res.FIC))
	require.Empty(t, res.Subchannels)
}

func TestReaderFicLengthByMode(t *testing.T) {
	require.Equal(t, 96, ficLength(1))
	require.Equal(t, 96, ficLength(2))
	require.Equal(t, 128, ficLength(3))
	require.Equal(t, 96, ficLength(4))
}

func TestReaderReportsInsufficientInputOnPartialFrame(t *testing.T) {
	r := NewReader()
	r.Feed(buildRawFrame(0, 1, 0, 0)[:100])
	_, err := r.Process()
	require.ErrorIs(t, err, ErrInsufficientInput)
}

func TestReaderResumesAfterMoreBytesArrive(t *testing.T) {
	r := NewReader()
	full := buildRawFrame(0, 1, 0, 0)
	r.Feed(full[:100])
	_, err := r.Process()
	require.ErrorIs(t, err, ErrInsufficientInput)

	r.Feed(full[100:])
	res, err := r.Process()
	require.NoError(t, err)
	require.Equal(t, 0, res.FCT)
}

func TestReaderConsecutiveFramesNoRefresh(t *testing.T) {
	r := NewReader()
	r.Feed(buildRawFrame(0, 1, 0, 0))
	first, err := r.Process()
	require.NoError(t, err)
	require.False(t, first.Timestamp.Refresh)

	r.Feed(buildRawFrame(1, 1, 0, 0))
	second, err := r.Process()
	require.NoError(t, err)
	require.False(t, second.Timestamp.Refresh)
}

func TestReaderSTCChangeDetection(t *testing.T) {
	r := NewReader()
	r.Feed(buildRawFrame(0, 1, 0, 0))
	first, err := r.Process()
	require.NoError(t, err)
	require.True(t, first.SourcesChanged, "first frame always reports a source change")

	r.Feed(buildRawFrame(1, 1, 0, 0))
	second, err := r.Process()
	require.NoError(t, err)
	require.False(t, second.SourcesChanged)
}

func TestReaderExternalTimeBypassesMNSC(t *testing.T) {
	r := NewReader()
	r.SetExternalTime(1704067200)
	r.Feed(buildRawFrame(0, 1, 16384, 0))

	res, err := r.Process()
	require.NoError(t, err)
	require.True(t, res.Timestamp.Valid)
	require.Equal(t, int64(1704067200), res.Timestamp.UTCSeconds)
	require.Equal(t, int64(16384), res.Timestamp.PPSTicks)
}
