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

// Package eti implements the ETI(NI) frame parser and timestamp decoder:
// framing autodetection, field extraction, MNSC time reassembly and TIST
// sub-second decoding.
package eti

import "fmt"

// PPSTicksPerSecond is the resolution of the TIST sub-second field: each
// tick is 1/16384000 s.
const PPSTicksPerSecond = 16384000

// FrameTimestamp is the per-frame transmission timestamp that flows
// alongside sample buffers from the ETI reader down to the SDR output stage.
type FrameTimestamp struct {
	UTCSeconds int64
	PPSTicks   int64 // [0, PPSTicksPerSecond)
	Valid      bool
	FCT        int
	Refresh    bool
}

// Add returns ts advanced by seconds (which may be negative), carrying
// between PPSTicks and UTCSeconds.
func (ts FrameTimestamp) Add(seconds float64) FrameTimestamp {
	ticks := int64(seconds * float64(PPSTicksPerSecond))
	// Round to the nearest tick rather than truncating, so that adding
	// exactly one tick's worth of seconds reproduces the same integer tick
	// count regardless of floating-point rounding.
	frac := seconds*float64(PPSTicksPerSecond) - float64(ticks)
	if frac >= 0.5 {
		ticks++
	} else if frac <= -0.5 {
		ticks--
	}

	total := ts.PPSTicks + ticks
	carry := total / PPSTicksPerSecond
	rem := total % PPSTicksPerSecond
	if rem < 0 {
		rem += PPSTicksPerSecond
		carry--
	}
	ts.PPSTicks = rem
	ts.UTCSeconds += carry
	return ts
}

// Compare returns -1, 0 or 1 as ts is before, equal to, or after other,
// comparing lexicographically on (UTCSeconds, PPSTicks)
func (ts FrameTimestamp) Compare(other FrameTimestamp) int {
	if ts.UTCSeconds != other.UTCSeconds {
		if ts.UTCSeconds < other.UTCSeconds {
			return -1
		}
		return 1
	}
	switch {
	case ts.PPSTicks < other.PPSTicks:
		return -1
	case ts.PPSTicks > other.PPSTicks:
		return 1
	default:
		return 0
	}
}

// String renders the timestamp the way the tist.timestamp controllable
// parameter reports it.
func (ts FrameTimestamp) String() string {
	secFraction := float64(ts.PPSTicks) / float64(PPSTicksPerSecond)
	return fmt.Sprintf("%.9f for frame FCT %d", float64(ts.UTCSeconds)+secFraction, ts.FCT)
}

// FrameDuration returns the wall-clock duration of one ETI frame for mode,
// in seconds: 96ms for mode I, 24ms for modes II/III, 48ms for mode IV.
func FrameDuration(mode int) float64 {
	switch mode {
	case 1:
		return 0.096
	case 2, 3:
		return 0.024
	case 4:
		return 0.048
	default:
		return 0.024
	}
}
