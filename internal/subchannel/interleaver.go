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

package subchannel

// interleaver implements the 16-branch convolutional time interleaver:
// branch i delays its bits by i frames, so the interleaver needs
// interleaverDepth-1 = 15 frames of priming before branch 15's first real
// output appears. During priming the interleaver emits zero bits but still
// advances every branch's indexing.
type interleaver struct {
	branches [interleaverDepth][][]byte
	frame    int
}

func newInterleaver() *interleaver {
	return &interleaver{}
}

// Process interleaves one frame's worth of punctured bits. Bit i of the
// input is assigned to branch i%interleaverDepth and delayed by that
// branch's index in frames.
func (il *interleaver) Process(bits []byte) []byte {
	n := len(bits)
	out := make([]byte, n)

	// Split this frame's bits by branch, push onto each branch's queue,
	// then pop (and zero-fill) the branch's current output.
	perBranch := make([][]byte, interleaverDepth)
	for i, b := range bits {
		branch := i % interleaverDepth
		perBranch[branch] = append(perBranch[branch], b)
	}

	outPerBranch := make([][]byte, interleaverDepth)
	for branch := 0; branch < interleaverDepth; branch++ {
		il.branches[branch] = append(il.branches[branch], perBranch[branch])
		delay := branch
		if len(il.branches[branch]) > delay {
			outPerBranch[branch] = il.branches[branch][0]
			il.branches[branch] = il.branches[branch][1:]
		} else {
			outPerBranch[branch] = make([]byte, len(perBranch[branch]))
		}
	}

	idxPerBranch := make([]int, interleaverDepth)
	for i := 0; i < n; i++ {
		branch := i % interleaverDepth
		out[i] = outPerBranch[branch][idxPerBranch[branch]]
		idxPerBranch[branch]++
	}

	il.frame++
	return out
}

// Primed reports whether the interleaver has processed enough frames that
// every branch's output now reflects real input (not priming zeros).
func (il *interleaver) Primed() bool {
	return il.frame >= interleaverDepth-1
}
