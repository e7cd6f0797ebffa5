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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeDevice is a minimal Device double for worker tests.
type fakeDevice struct {
	realSecs    float64
	transmitted [][]byte
	lastEOB     []bool
	clkOK       bool
}

func (d *fakeDevice) Tune(context.Context, float64, float64) error       { return nil }
func (d *fakeDevice) GetTXFreq() float64                                 { return 0 }
func (d *fakeDevice) SetTXGain(context.Context, float64) error           { return nil }
func (d *fakeDevice) GetTXGain() float64                                 { return 0 }
func (d *fakeDevice) SetBandwidth(context.Context, float64) error        { return nil }
func (d *fakeDevice) GetBandwidth() float64                              { return 0 }
func (d *fakeDevice) GetRealSecs() (float64, error)                      { return d.realSecs, nil }
func (d *fakeDevice) IsClkSourceOK() bool                                { return d.clkOK }
func (d *fakeDevice) GetTemperature() (float64, error)                   { return 40, nil }
func (d *fakeDevice) GetRunStatistics() map[string]float64                { return nil }
func (d *fakeDevice) RequireTimestampRefresh()                           {}
func (d *fakeDevice) ReceiveFrame(context.Context, []byte, int, time.Duration) (float64, int, error) {
	return 0, 0, nil
}

func (d *fakeDevice) TransmitFrame(_ context.Context, frame []byte, _ float64, _, eob bool) error {
	d.transmitted = append(d.transmitted, frame)
	d.lastEOB = append(d.lastEOB, eob)
	return nil
}

func frameAt(samples []byte, utc int64) Frame {
	return Frame{Samples: samples, UTCSeconds: utc, PPSTicks: 0, Valid: true}
}

func TestLateFrameDroppedAndCounted(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)

	f := frameAt([]byte{1, 2, 3, 4}, 970) // 30s in the past
	require.NoError(t, w.transmitOne(context.Background(), f))

	require.EqualValues(t, 1, w.Stats().Late.Load())
	require.Empty(t, dev.transmitted)
}

func TestFutureTimestampIsTerminal(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)

	f := frameAt([]byte{1, 2}, 1000+int64(TimestampAbortFuture.Seconds())+1)
	err := w.transmitOne(context.Background(), f)
	require.ErrorIs(t, err, ErrTimestampTooFarInFuture)
}

func TestOnTimeFrameIsTransmitted(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)

	f := frameAt([]byte{9, 9}, 1000)
	require.NoError(t, w.transmitOne(context.Background(), f))
	require.Len(t, dev.transmitted, 1)
	require.EqualValues(t, 1, w.Stats().Frames.Load())
}

func TestMutingSendsZeroedFrameWithEndOfBurst(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)
	w.SetMuting(true)

	f := frameAt([]byte{9, 9}, 1000)
	require.NoError(t, w.transmitOne(context.Background(), f))
	require.Len(t, dev.transmitted, 1)
	require.Equal(t, []byte{0, 0}, dev.transmitted[0])
	require.True(t, dev.lastEOB[0])
}

func TestInvalidTimestampMutesInSynchronousMode(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)

	f := Frame{Samples: []byte{5, 5}, Valid: false}
	require.NoError(t, w.transmitOne(context.Background(), f))
	require.Equal(t, []byte{0, 0}, dev.transmitted[0])
}

func TestDPDHookReceivesCopyOfTransmittedFrame(t *testing.T) {
	dev := &fakeDevice{realSecs: 1000, clkOK: true}
	var captured []byte
	var capturedTS float64
	sink := sinkFunc(func(b []byte, ts float64) { captured = b; capturedTS = ts })
	w := NewWorker(dev, nil, true, true, sink)

	f := frameAt([]byte{7, 8}, 1000)
	require.NoError(t, w.transmitOne(context.Background(), f))
	require.Equal(t, []byte{7, 8}, captured)
	require.Equal(t, 1000.0, capturedTS)
}

type sinkFunc func(samples []byte, ts float64)

func (f sinkFunc) SetTXFrame(samples []byte, ts float64) { f(samples, ts) }
