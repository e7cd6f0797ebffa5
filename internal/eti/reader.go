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

package eti

import (
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Reader implements the ETI reader + timestamp decoder: each Process call
// parses one frame into FIC bits, per-subchannel bytes, a timestamp, the
// FCT, and the transmission mode, retaining partial input across calls.
type Reader struct {
	buf     []byte
	framing *Framing

	mnsc   *MNSCDecoder
	offset time.Duration

	offsetChanged bool
	prevSTCHash   uint64
	haveSTCHash   bool

	prevTimestamp *FrameTimestamp
	fct0Timestamp *FrameTimestamp

	extUTC      int64
	useExternal bool
}

// NewReader returns a Reader with no buffered data.
func NewReader() *Reader {
	return &Reader{mnsc: NewMNSCDecoder()}
}

// Feed appends newly arrived bytes to the reader's internal buffer.
func (r *Reader) Feed(b []byte) {
	r.buf = append(r.buf, b...)
}

// SetOffset updates the real-valued offset the decoder adds to every
// timestamp it produces; a change marks refresh=true on the next frame.
func (r *Reader) SetOffset(d time.Duration) {
	if d != r.offset {
		r.offset = d
		r.offsetChanged = true
	}
}

// SetExternalTime supplies the frame's UTC second count from an out-of-band
// source (the EDI AF-packet header); while in effect the MNSC reassembly
// path is bypassed and every frame's timestamp is valid.
func (r *Reader) SetExternalTime(utcSeconds int64) {
	r.extUTC = utcSeconds
	r.useExternal = true
}

// Result is what Process returns for one successfully decoded ETI frame.
type Result struct {
	FIC         []byte
	Subchannels [][]byte
	STC         []STC
	Timestamp   FrameTimestamp
	FCT         int
	Mode        int
	// SourcesChanged is true when the subchannel STC layout differs from
	// the previous frame.
	SourcesChanged bool
}

// Process consumes one ETI frame's worth of buffered bytes, detecting
// framing (raw/streamed/framed) on the first call. It returns
// ErrInsufficientInput if fewer than a full frame is currently buffered;
// the reader keeps its partial buffer and resumes on the next call.
func (r *Reader) Process() (*Result, error) {
	if r.framing == nil {
		f, err := DetectFraming(r.buf)
		if err != nil {
			if len(r.buf) < RawFrameSize {
				return nil, ErrInsufficientInput
			}
			return nil, err
		}
		r.framing = &f
	}

	payload, consumed, err := r.extractOneFrame()
	if err != nil {
		return nil, err
	}

	decoded, err := parseRawFrame(payload)
	if err != nil {
		return nil, err
	}
	r.buf = r.buf[consumed:]

	return r.finish(decoded), nil
}

// extractOneFrame returns the raw 6144-byte frame payload for the next
// frame in the buffer (padding a streamed/framed frame's declared length
// out to RawFrameSize is not needed: the wire always contains full-size
// ETI(NI) frames once framing is resolved), and how many buffered bytes it
// consumed.
func (r *Reader) extractOneFrame() (payload []byte, consumed int, err error) {
	switch *r.framing {
	case FramingStreamed:
		if len(r.buf) < 2 {
			return nil, 0, ErrInsufficientInput
		}
		length := int(r.buf[0]) | int(r.buf[1])<<8
		if len(r.buf) < 2+length {
			return nil, 0, ErrInsufficientInput
		}
		return r.buf[2 : 2+length], 2 + length, nil

	case FramingFramed:
		if len(r.buf) < 6 {
			return nil, 0, ErrInsufficientInput
		}
		length := int(r.buf[4]) | int(r.buf[5])<<8
		if len(r.buf) < 6+length {
			return nil, 0, ErrInsufficientInput
		}
		return r.buf[6 : 6+length], 6 + length, nil

	default: // FramingRaw
		if len(r.buf) < RawFrameSize {
			return nil, 0, ErrInsufficientInput
		}
		return r.buf[:RawFrameSize], RawFrameSize, nil
	}
}

func (r *Reader) finish(decoded *DecodedFrame) *Result {
	var utc, pps int64
	var valid bool
	if r.useExternal {
		utc, pps, valid = r.extUTC, int64(decoded.TIST), true
	} else {
		r.mnsc.UpdatePPS(int64(decoded.TIST))
		r.mnsc.PushMNSC(decoded.Framephase, decoded.MNSC)
		utc, pps, valid = r.mnsc.Timestamp()
	}

	ts := FrameTimestamp{
		UTCSeconds: utc,
		PPSTicks:   pps,
		Valid:      valid,
		FCT:        decoded.FCT,
	}
	ts = ts.Add(r.offset.Seconds())

	refresh := r.offsetChanged
	r.offsetChanged = false
	// Continuity is only checkable once both ends of the comparison carry
	// an established time.
	if r.prevTimestamp != nil && r.prevTimestamp.Valid && ts.Valid {
		want := r.prevTimestamp.Add(FrameDuration(decoded.Mode))
		if want.UTCSeconds != ts.UTCSeconds || want.PPSTicks != ts.PPSTicks {
			refresh = true
		}
	}
	ts.Refresh = refresh
	prev := ts
	r.prevTimestamp = &prev

	if valid && decoded.FCT == 0 && r.fct0Timestamp == nil {
		snap := ts
		r.fct0Timestamp = &snap
	}

	sourcesChanged := r.stcChanged(decoded.STC)

	return &Result{
		FIC:            decoded.FIC,
		Subchannels:    decoded.Subchannels,
		STC:            decoded.STC,
		Timestamp:      ts,
		FCT:            decoded.FCT,
		Mode:           decoded.Mode,
		SourcesChanged: sourcesChanged,
	}
}

// stcChanged reports whether the subchannel descriptor array differs from
// the previous frame's, using a structural hash.
func (r *Reader) stcChanged(stc []STC) bool {
	h, err := hashstructure.Hash(stc, hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing a plain value slice cannot fail in practice; treat an
		// error as "changed" so the caller re-provisions defensively.
		return true
	}
	changed := !r.haveSTCHash || h != r.prevSTCHash
	r.prevSTCHash = h
	r.haveSTCHash = true
	return changed
}

// FCT0Timestamp returns the timestamp of the first frame where FCT wrapped
// to 0 after a valid timestamp was established; the tist.timestamp0
// controllable parameter reports it.
func (r *Reader) FCT0Timestamp() (FrameTimestamp, bool) {
	if r.fct0Timestamp == nil {
		return FrameTimestamp{}, false
	}
	return *r.fct0Timestamp, true
}
