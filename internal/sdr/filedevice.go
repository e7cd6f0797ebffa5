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

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileDevice implements Device by writing every transmitted frame's raw IQ
// bytes to a file: no hardware, no timestamp semantics, every
// TransmitFrame call is an unconditional write. It exists so cmd/dabmod
// can run the full pipeline end to end without a radio attached.
type FileDevice struct {
	f      *os.File
	freq   float64
	gain   float64
	bw     float64
	start  time.Time
}

// OpenFileDevice truncates (or creates) path and returns a FileDevice
// writing to it.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening output file %s: %w", ErrDevice, path, err)
	}
	return &FileDevice{f: f, start: time.Now()}, nil
}

func (d *FileDevice) Tune(_ context.Context, _, frequency float64) error {
	d.freq = frequency
	return nil
}

func (d *FileDevice) GetTXFreq() float64 { return d.freq }

func (d *FileDevice) SetTXGain(_ context.Context, gain float64) error {
	d.gain = gain
	return nil
}

func (d *FileDevice) GetTXGain() float64 { return d.gain }

func (d *FileDevice) SetBandwidth(_ context.Context, hz float64) error {
	d.bw = hz
	return nil
}

func (d *FileDevice) GetBandwidth() float64 { return d.bw }

func (d *FileDevice) TransmitFrame(_ context.Context, frame []byte, _ float64, _, _ bool) error {
	if _, err := d.f.Write(frame); err != nil {
		return fmt.Errorf("%w: writing frame: %w", ErrDevice, err)
	}
	return nil
}

func (d *FileDevice) ReceiveFrame(context.Context, []byte, int, time.Duration) (float64, int, error) {
	return 0, 0, fmt.Errorf("%w: file device has no receive path", ErrDevice)
}

func (d *FileDevice) GetRealSecs() (float64, error) {
	return time.Since(d.start).Seconds(), nil
}

func (d *FileDevice) IsClkSourceOK() bool { return true }

func (d *FileDevice) GetTemperature() (float64, error) { return 0, nil }

func (d *FileDevice) GetRunStatistics() map[string]float64 { return map[string]float64{} }

func (d *FileDevice) RequireTimestampRefresh() {}

// Close flushes and closes the backing file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
