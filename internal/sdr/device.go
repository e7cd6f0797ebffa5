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

// Package sdr implements the SDR output stage:
// queuing, hardware-timed sample submission, GNSS-disciplined clock
// discipline, and the mute-on-missing-timestamp policy. The core never
// talks to real hardware; it depends only on the Device capability
// contract below ("Concrete SDR device drivers... are out
// of scope; the core depends only on the abstract SDR device contract").
package sdr

import (
	"context"
	"time"
)

// Device is the abstract SDR hardware capability set the output stage
// drives. Concrete drivers (UHD, SoapySDR, Lime, ...) live outside this
// module; FileDevice below is enough to exercise the stage.
type Device interface {
	Tune(ctx context.Context, loOffset, frequency float64) error

	GetTXFreq() float64
	SetTXGain(ctx context.Context, gain float64) error
	GetTXGain() float64
	SetBandwidth(ctx context.Context, hz float64) error
	GetBandwidth() float64

	// TransmitFrame hands samples to the device with an optional hardware
	// timestamp; hasTimestamp false mutes by sending no reference, endOfBurst
	// requests the device mark this as the last burst before a time change
	// or mute.
	TransmitFrame(ctx context.Context, frame []byte, tsSeconds float64, hasTimestamp, endOfBurst bool) error

	// ReceiveFrame captures up to n bytes for DPD feedback, returning the
	// hardware timestamp of the first sample.
	ReceiveFrame(ctx context.Context, buf []byte, n int, timeout time.Duration) (tsSeconds float64, read int, err error)

	// GetRealSecs returns the device's current time, seconds since its
	// epoch.
	GetRealSecs() (float64, error)

	// IsClkSourceOK reports whether the external reference and PPS inputs
	// are currently healthy.
	IsClkSourceOK() bool

	GetTemperature() (float64, error)
	GetRunStatistics() map[string]float64

	// RequireTimestampRefresh hints to the device that the next frame must
	// re-establish hardware-time alignment.
	RequireTimestampRefresh()
}
