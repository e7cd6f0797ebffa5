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

	"github.com/sdrnet/dabmod/internal/flowgraph"
)

// NewOutputNode wraps a Worker as a flowgraph.KindOutput node: every input
// buffer is expected to be a []byte of IQ samples. upstream is the node
// whose metadata accompanies the sample buffer it produces; because the
// scheduler runs nodes in topological order, upstream has already run by
// the time this node's process function reads upstream.OutputMetadata().
func NewOutputNode(name string, w *Worker, upstream *flowgraph.Node) *flowgraph.Node {
	process := func(ctx context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		if len(in) == 0 {
			return nil, nil
		}
		samples, _ := in[0].([]byte)
		meta := upstream.OutputMetadata()
		f := Frame{
			Samples:    samples,
			UTCSeconds: meta.UTCSeconds,
			PPSTicks:   meta.PPSTicks,
			Valid:      meta.Valid,
			FCT:        meta.FCT,
			Refresh:    meta.Refresh,
		}
		if err := w.Submit(ctx, f); err != nil {
			return nil, err
		}
		return samples, nil
	}
	return flowgraph.NewNode(name, flowgraph.KindOutput, process, nil, 0)
}
