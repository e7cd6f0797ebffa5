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

package config

// TransmissionMode selects one of the four DAB OFDM parameter sets.
type TransmissionMode int

const (
	// ModeI is transmission mode I (1536 carriers, 2.048 MS/s).
	ModeI TransmissionMode = iota + 1
	// ModeII is transmission mode II (384 carriers).
	ModeII
	// ModeIII is transmission mode III (192 carriers).
	ModeIII
	// ModeIV is transmission mode IV (768 carriers).
	ModeIV
)

// GainMode selects the digital gain control strategy.
type GainMode string

const (
	// GainModeFix applies a fixed gain of 512*digital_gain.
	GainModeFix GainMode = "fix"
	// GainModeMax normalises against the frame's peak sample.
	GainModeMax GainMode = "max"
	// GainModeVar normalises against the frame's empirical standard deviation.
	GainModeVar GainMode = "var"
)

// SampleFormat selects the SDR output wire format.
type SampleFormat string

const (
	FormatComplexFloat SampleFormat = "complexf"
	FormatS16          SampleFormat = "s16"
	FormatS8           SampleFormat = "s8"
	FormatU8           SampleFormat = "u8"
)

// ClockSourceLostPolicy selects how the core reacts to a lost GNSS
// reference.
type ClockSourceLostPolicy string

const (
	// ClockPolicyCrash makes loss of the reference a terminal error.
	ClockPolicyCrash ClockSourceLostPolicy = "crash"
	// ClockPolicyIgnore continues transmitting unsynchronised.
	ClockPolicyIgnore ClockSourceLostPolicy = "ignore"
)

// LogLevel selects the minimum severity the process logger emits.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
