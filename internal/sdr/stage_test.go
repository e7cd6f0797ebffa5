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

	"github.com/sdrnet/dabmod/internal/flowgraph"
	"github.com/stretchr/testify/require"
)

func TestOutputNodeSubmitsFrameWithUpstreamMetadata(t *testing.T) {
	upstream := flowgraph.NewNode("src", flowgraph.KindInput,
		func(context.Context, []flowgraph.Buffer) (flowgraph.Buffer, error) {
			return []byte{1, 2, 3, 4}, nil
		}, nil, 0)

	dev := &fakeDevice{realSecs: 500, clkOK: true}
	w := NewWorker(dev, nil, true, true, nil)
	out := NewOutputNode("sdr-out", w, upstream)

	sched := flowgraph.New(nil, nil)
	require.NoError(t, sched.Connect(upstream, out))

	ok, err := sched.Run(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case f := <-w.queue:
		require.Equal(t, []byte{1, 2, 3, 4}, f.Samples)
	default:
		t.Fatal("expected a frame to have been queued")
	}
}
