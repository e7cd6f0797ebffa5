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

// Package cif implements the Common Interleaved Frame multiplexer: it
// packs each subchannel's coded, interleaved bit stream
// into its CU-addressed slot of the fixed 55296-bit CIF.
package cif

import "fmt"

// TotalBits is the fixed CIF size: 864 CU * 64 bits.
const TotalBits = 864 * 64

// CUBits is the bit width of one Capacity Unit.
const CUBits = 64

// TotalCUs is the CIF's fixed capacity in Capacity Units.
const TotalCUs = 864

// Entry is one subchannel's placement within the CIF.
type Entry struct {
	StartAddress int    // in CU units
	Bits         []byte // coded, interleaved bits, one byte per bit
}

// Mux packs entries into a TotalBits-long CIF, zero-filling any CUs no
// subchannel claims. It returns an error if any entry would write past the
// CIF's fixed capacity.
func Mux(entries []Entry) ([]byte, error) {
	cif := make([]byte, TotalBits)
	for _, e := range entries {
		start := e.StartAddress * CUBits
		end := start + len(e.Bits)
		if start < 0 || end > TotalBits {
			return nil, fmt.Errorf("cif: subchannel at CU %d (bits [%d,%d)) overflows the %d-bit CIF",
				e.StartAddress, start, end, TotalBits)
		}
		copy(cif[start:end], e.Bits)
	}
	return cif, nil
}
