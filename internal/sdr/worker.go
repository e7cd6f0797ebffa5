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
	"sync/atomic"
	"time"

	"github.com/sdrnet/dabmod/internal/logctx"
)

// TimestampAbortFuture is the abort threshold for future timestamps: a
// frame timestamped more than this far ahead of device time is a fatal
// configuration/sync problem, not a transient one.
const TimestampAbortFuture = 100 * time.Second

// TXTimeout is how far in the past (relative to device time) a frame's
// timestamp may be before it is dropped as late.
const TXTimeout = 20 * time.Second

// QueueDepth is the SDR worker's bounded frame queue capacity.
const QueueDepth = 8

// Frame is one transmission frame handed to the SDR worker: its wire-format
// samples plus the metadata that travelled alongside it through the
// flowgraph.
type Frame struct {
	Samples    []byte
	UTCSeconds int64
	PPSTicks   int64
	Valid      bool
	FCT        int
	Refresh    bool
}

// seconds returns the frame's timestamp as a float64 seconds-since-epoch
// value, for comparison against device time.
func (f Frame) seconds() float64 {
	return float64(f.UTCSeconds) + float64(f.PPSTicks)/16384000.0
}

// TXFrameSink receives a copy of every transmitted frame for DPD feedback
// capture; the capture logic itself is
// out of scope, only this publish call is.
type TXFrameSink interface {
	SetTXFrame(samples []byte, tsSeconds float64)
}

// Stats are the read-only run statistics exposed as
// controllable parameters (sdr.underruns, sdr.latepackets, sdr.frames).
type Stats struct {
	Frames      atomic.Uint64
	Late        atomic.Uint64
	Underruns   atomic.Uint64
	FutureAbort atomic.Bool
}

// Worker pops frames from a bounded queue and hands them to a Device,
// applying the synchronous-mode timestamp policy, prebuffer-after-underrun
// behaviour, and muting.
type Worker struct {
	device Device
	log    logctx.Sink
	sink   TXFrameSink

	synchronous     bool
	muteNoTimestamp bool
	muted           atomic.Bool

	queue chan Frame
	stats Stats

	prebuffering atomic.Bool
}

// NewWorker returns a Worker bound to device, ready to have frames pushed
// via Submit and drained via Run.
func NewWorker(device Device, log logctx.Sink, synchronous, muteNoTimestamp bool, sink TXFrameSink) *Worker {
	if log == nil {
		log = logctx.Discard()
	}
	return &Worker{
		device:          device,
		log:             log,
		sink:            sink,
		synchronous:     synchronous,
		muteNoTimestamp: muteNoTimestamp,
		queue:           make(chan Frame, QueueDepth),
	}
}

// Stats returns the worker's running statistics.
func (w *Worker) Stats() *Stats { return &w.stats }

// SetMuting toggles the remote-controllable mute flag.
func (w *Worker) SetMuting(m bool) { w.muted.Store(m) }

// Muted reports the current mute state.
func (w *Worker) Muted() bool { return w.muted.Load() }

// QueueLen reports the worker's current queue depth, for metrics.
func (w *Worker) QueueLen() int { return len(w.queue) }

// Submit enqueues frame for transmission, blocking if the queue is full.
func (w *Worker) Submit(ctx context.Context, f Frame) error {
	select {
	case w.queue <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReportUnderrun records a device-reported underrun, arming the
// prebuffer-before-resume policy.
func (w *Worker) ReportUnderrun() {
	w.stats.Underruns.Add(1)
	w.prebuffering.Store(true)
}

// Run drains the queue and transmits frames until ctx is cancelled or a
// terminal device error occurs.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if w.prebuffering.Load() {
			if len(w.queue) < QueueDepth {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Millisecond):
					continue
				}
			}
			w.prebuffering.Store(false)
		}

		select {
		case <-ctx.Done():
			return nil
		case f := <-w.queue:
			if err := w.transmitOne(ctx, f); err != nil {
				return err
			}
		}
	}
}

// transmitOne applies the timestamp policy to f and hands it to the
// device, or drops/mutes it.
func (w *Worker) transmitOne(ctx context.Context, f Frame) error {
	if w.synchronous && !f.Valid && w.muteNoTimestamp {
		return w.sendMuted(ctx, f)
	}

	deviceNow, err := w.device.GetRealSecs()
	if err != nil {
		return fmt.Errorf("%w: reading device time: %w", ErrDevice, err)
	}

	if f.Valid {
		delta := f.seconds() - deviceNow
		if delta > TimestampAbortFuture.Seconds() {
			w.stats.FutureAbort.Store(true)
			return fmt.Errorf("%w: frame FCT=%d is %.3fs ahead of device time", ErrTimestampTooFarInFuture, f.FCT, delta)
		}
		if delta < -TXTimeout.Seconds() {
			w.stats.Late.Add(1)
			w.log.Warn("sdr: dropping late frame", "fct", f.FCT, "seconds_late", -delta)
			return nil
		}
	}

	if w.muted.Load() {
		return w.sendMuted(ctx, f)
	}

	if w.sink != nil {
		w.sink.SetTXFrame(f.Samples, f.seconds())
	}

	if err := w.device.TransmitFrame(ctx, f.Samples, f.seconds(), f.Valid, f.Refresh); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	w.stats.Frames.Add(1)
	return nil
}

// sendMuted transmits a zero-filled frame of the same length with
// end-of-burst set, so the device stops cleanly.
func (w *Worker) sendMuted(ctx context.Context, f Frame) error {
	silence := make([]byte, len(f.Samples))
	if err := w.device.TransmitFrame(ctx, silence, f.seconds(), false, true); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	w.stats.Frames.Add(1)
	return nil
}
