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

import (
	"errors"
	"fmt"
)

// Sentinel configuration errors. They arise only here, at startup, from
// the collaborator that parses configuration; the core itself never
// produces one once running.
var (
	ErrInvalidTransmissionMode = errors.New("invalid transmission mode")
	ErrInvalidGainMode         = errors.New("invalid gain mode")
	ErrInvalidGainVarFactor    = errors.New("gain variance factor must be positive")
	ErrInvalidSampleFormat     = errors.New("invalid SDR output sample format")
	ErrInvalidInputTransport   = errors.New("input transport URL missing or unrecognised")
	ErrInvalidTIIComb          = errors.New("TII comb must be in [0,23]")
	ErrInvalidTIIPattern       = errors.New("TII pattern must be in [0,69]")
	ErrInvalidClockPolicy      = errors.New("invalid clock-source-lost policy")
)

// Validate checks internal consistency of a loaded Config. It is the only
// place ConfigurationError-class failures originate.
func (c Config) Validate() error {
	switch c.TransmissionMode {
	case ModeI, ModeII, ModeIII, ModeIV:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTransmissionMode, c.TransmissionMode)
	}

	switch c.Gain.Mode {
	case GainModeFix, GainModeMax, GainModeVar:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidGainMode, c.Gain.Mode)
	}
	if c.Gain.Mode == GainModeVar && c.Gain.VarianceFactor <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidGainVarFactor, c.Gain.VarianceFactor)
	}

	switch c.SDR.Format {
	case FormatComplexFloat, FormatS16, FormatS8, FormatU8:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSampleFormat, c.SDR.Format)
	}

	if c.Input.TransportURL == "" {
		return ErrInvalidInputTransport
	}

	if c.TII.Enable {
		if c.TII.Comb < 0 || c.TII.Comb > 23 {
			return fmt.Errorf("%w: %d", ErrInvalidTIIComb, c.TII.Comb)
		}
		if c.TII.Pattern < 0 || c.TII.Pattern > 69 {
			return fmt.Errorf("%w: %d", ErrInvalidTIIPattern, c.TII.Pattern)
		}
	}

	switch c.ClockLostPolicy {
	case ClockPolicyCrash, ClockPolicyIgnore:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidClockPolicy, c.ClockLostPolicy)
	}

	return nil
}
