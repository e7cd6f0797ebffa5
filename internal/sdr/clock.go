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

import "time"

// ClockState is one state of the GNSS/PPS discipline state machine.
type ClockState int

const (
	// StateStartup waits for GPS lock and absence of PPS loss before
	// snapshotting a (utc, device-clock) reference pair.
	StateStartup ClockState = iota
	// StateNormal is the steady, disciplined state.
	StateNormal
	// StateHoldover is entered on PPS loss; the oscillator free-runs until
	// lock returns or MaxGPSHoldover elapses.
	StateHoldover
)

func (s ClockState) String() string {
	switch s {
	case StateStartup:
		return "startup"
	case StateNormal:
		return "normal"
	case StateHoldover:
		return "holdover"
	default:
		return "unknown"
	}
}

// ClockDiscipline runs the GNSS reference clock state machine:
// Startup -> Normal on a verified PPS edge, Normal -> Holdover on PPS loss,
// Holdover -> Normal if lock returns inside MaxGPSHoldover, else back to
// Startup (forcing a resync, muting in the meantime).
type ClockDiscipline struct {
	state ClockState

	maxHoldover    time.Duration
	holdoverSince  time.Time

	utcAtStartup    float64
	deviceAtStartup float64

	now func() time.Time
}

// NewClockDiscipline returns a ClockDiscipline starting in StateStartup.
func NewClockDiscipline(maxHoldover time.Duration) *ClockDiscipline {
	return &ClockDiscipline{state: StateStartup, maxHoldover: maxHoldover, now: time.Now}
}

// State returns the current clock state.
func (c *ClockDiscipline) State() ClockState { return c.state }

// Tick advances the state machine given the device's current lock status
// and (utc, device-clock) reading, returning the resulting state. lockOK
// mirrors Device.IsClkSourceOK(); utcSeconds/deviceSeconds are only used to
// snapshot the Startup->Normal transition's reference pair.
func (c *ClockDiscipline) Tick(lockOK bool, utcSeconds, deviceSeconds float64) ClockState {
	switch c.state {
	case StateStartup:
		if lockOK {
			c.utcAtStartup = utcSeconds
			c.deviceAtStartup = deviceSeconds
			c.state = StateNormal
		}

	case StateNormal:
		if !lockOK {
			c.state = StateHoldover
			c.holdoverSince = c.now()
		}

	case StateHoldover:
		if lockOK {
			c.state = StateNormal
		} else if c.now().Sub(c.holdoverSince) > c.maxHoldover {
			c.state = StateStartup
		}
	}
	return c.state
}

// StartupReference returns the (utc, device-clock) pair snapshotted at the
// most recent Startup->Normal transition.
func (c *ClockDiscipline) StartupReference() (utcSeconds, deviceSeconds float64) {
	return c.utcAtStartup, c.deviceAtStartup
}
