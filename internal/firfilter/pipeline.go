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

package firfilter

import (
	"context"
	"sync"
)

// Stage runs a Filter on its own goroutine, decoupling the FIR convolution
// from the scheduler's synchronous frame loop. It introduces exactly one
// frame of pipeline delay: the Nth call to Submit returns the (N-1)th
// filtered frame, and the very first Submit call returns a zero-filled
// frame of the same length while the worker fills its pipeline.
type Stage struct {
	mu     sync.Mutex
	filter *Filter

	in    chan []complex64
	out   chan []complex64
	frameLen int
	primed bool

	wg sync.WaitGroup
}

// NewStage starts a Stage's worker goroutine. frameLen is the fixed sample
// count of every frame Submit will receive.
func NewStage(ctx context.Context, filter *Filter, frameLen int) *Stage {
	s := &Stage{
		filter:   filter,
		in:       make(chan []complex64, 1),
		out:      make(chan []complex64, 1),
		frameLen: frameLen,
	}
	s.wg.Add(1)
	go s.run(ctx)
	return s
}

func (s *Stage) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.in:
			if !ok {
				return
			}
			s.mu.Lock()
			filtered := s.filter.Apply(frame)
			s.mu.Unlock()
			select {
			case s.out <- filtered:
			case <-ctx.Done():
				return
			}
		}
	}
}

// SetTaps swaps the worker's filter coefficients, serialised against the
// in-flight Apply call.
func (s *Stage) SetTaps(taps Taps) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SetTaps(taps)
}

// Submit hands one frame to the worker and returns the previous frame's
// filtered output (or a zero frame on the very first call), implementing
// the one-frame pipeline delay the scheduler's metadata lane must mirror.
func (s *Stage) Submit(frame []complex64) []complex64 {
	s.in <- frame
	if !s.primed {
		s.primed = true
		return make([]complex64, len(frame))
	}
	return <-s.out
}

// QueueLen reports how many frames are waiting for the worker, for
// metrics.
func (s *Stage) QueueLen() int { return len(s.in) }

// Close stops accepting new frames and waits for the worker to exit.
func (s *Stage) Close() {
	close(s.in)
	s.wg.Wait()
}
