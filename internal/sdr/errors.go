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

package sdr

import "errors"

// Sentinel errors for the SDR output stage.
var (
	// ErrTimestampLate is counted per-frame; the frame is dropped.
	ErrTimestampLate = errors.New("sdr: frame timestamp is in the past beyond the TX timeout")
	// ErrTimestampTooFarInFuture is terminal once it exceeds
	// TimestampAbortFuture.
	ErrTimestampTooFarInFuture = errors.New("sdr: frame timestamp is too far in the future")
	// ErrClockSourceLost is terminal under the crash policy, recoverable
	// (pipeline continues unsynchronised) under the ignore policy.
	ErrClockSourceLost = errors.New("sdr: external clock reference lost")
	// ErrDevice wraps any error the concrete SDR device reports; always
	// terminal for the SDR worker.
	ErrDevice = errors.New("sdr: device error")
)
