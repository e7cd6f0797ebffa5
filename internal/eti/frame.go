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

import "fmt"

// STC is one subchannel's stream descriptor, decoded from an ETI eti_STC
// field.
type STC struct {
	SCID         int
	StartAddress int // in CU units
	STL          int // length, in CU units
	TPL          int // protection level field
}

// ByteLength is the subchannel's coded byte length per ETI frame: STL CUs,
// each CU being 64 bits / 8 bytes.
func (s STC) ByteLength() int { return s.STL * 8 }

// DecodedFrame is everything the reader extracts from one ETI frame.
type DecodedFrame struct {
	FCT          int
	Mode         int // MID, 1..4
	FIC          []byte
	Subchannels  [][]byte
	STC          []STC
	MNSC         uint16
	TIST         uint32
	Framephase   int
}

// ficLength returns the FIC payload length in bytes: 128 for MID=3,
// else 96.
func ficLength(mid int) int {
	if mid == 3 {
		return 128
	}
	return 96
}

// parseRawFrame decodes one complete 6144-byte raw ETI(NI) frame:
// SYNC, FC, STC descriptors, EOH, payload, EOF, TIST, padding, per
// EN 300 799.
func parseRawFrame(buf []byte) (*DecodedFrame, error) {
	if len(buf) < RawFrameSize {
		return nil, ErrInsufficientInput
	}

	// eti_FC occupies bytes [4:8).
	fc := buf[4:8]
	fct := int(fc[0])
	nst := int(fc[1] >> 1)
	ficf := fc[1] & 1
	// FC.MID: 00=mode I, 01=mode II, 10=mode III, 11=mode IV.
	mid := int((fc[2]>>3)&0x3) + 1

	if ficf == 0 {
		return nil, ErrFicMissing
	}

	off := 8
	stcs := make([]STC, nst)
	for i := 0; i < nst; i++ {
		if off+4 > len(buf) {
			return nil, ErrInsufficientInput
		}
		s := buf[off : off+4]
		startHigh := int(s[0]>>6) & 0x3
		scid := int(s[0]) & 0x3F
		startLow := int(s[1])
		stlHigh := int(s[2]>>6) & 0x3
		tpl := int(s[2]) & 0x3F
		stlLow := int(s[3])
		stcs[i] = STC{
			SCID:         scid,
			StartAddress: startHigh<<8 | startLow,
			STL:          stlHigh<<8 | stlLow,
			TPL:          tpl,
		}
		off += 4
	}

	if off+4 > len(buf) {
		return nil, ErrInsufficientInput
	}
	mnsc := uint16(buf[off])<<8 | uint16(buf[off+1])
	off += 4 // EOH: MNSC(16) + CRC(16)

	ficLen := ficLength(mid)
	if off+ficLen > len(buf) {
		return nil, ErrInsufficientInput
	}
	fic := append([]byte(nil), buf[off:off+ficLen]...)
	off += ficLen

	subchannels := make([][]byte, nst)
	for i, s := range stcs {
		n := s.ByteLength()
		if off+n > len(buf) {
			return nil, ErrInsufficientInput
		}
		subchannels[i] = append([]byte(nil), buf[off:off+n]...)
		off += n
	}

	if off+4 > len(buf) {
		return nil, ErrInsufficientInput
	}
	off += 4 // EOF: CRC(16) + RFU(16)

	if off+4 > len(buf) {
		return nil, ErrInsufficientInput
	}
	tist := uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
	off += 4

	return &DecodedFrame{
		FCT:         fct,
		Mode:        mid,
		FIC:         fic,
		Subchannels: subchannels,
		STC:         stcs,
		MNSC:        mnsc,
		TIST:        tist & 0x00FFFFFF,
		Framephase:  fct % 4,
	}, nil
}

func (f *DecodedFrame) String() string {
	return fmt.Sprintf("ETI frame FCT=%d mode=%d NST=%d FIC=%dB", f.FCT, f.Mode, len(f.Subchannels), len(f.FIC))
}
