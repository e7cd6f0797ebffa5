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

package flowgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func constNode(name string, v int) *Node {
	return NewNode(name, KindInput, func(context.Context, []Buffer) (Buffer, error) {
		return v, nil
	}, nil, 0)
}

func addOneNode(name string) *Node {
	return NewNode(name, KindCodec, func(_ context.Context, in []Buffer) (Buffer, error) {
		return in[0].(int) + 1, nil
	}, nil, 0)
}

func TestConnectMaintainsTopologicalOrder(t *testing.T) {
	s := New(nil, nil)
	a := constNode("a", 1)
	b := addOneNode("b")
	require.NoError(t, s.Connect(a, b))

	idx := map[string]int{}
	for i, n := range s.Nodes() {
		idx[n.Name] = i
	}
	require.Less(t, idx["a"], idx["b"])
}

func TestConnectRotatesDstAfterSrcWhenOutOfOrder(t *testing.T) {
	s := New(nil, nil)
	b := addOneNode("b")
	a := constNode("a", 1)
	s.AddNode(b)
	s.AddNode(a)
	// b is before a in the list; connecting a->b must rotate b after a.
	require.NoError(t, s.Connect(a, b))

	idx := map[string]int{}
	for i, n := range s.Nodes() {
		idx[n.Name] = i
	}
	require.Less(t, idx["a"], idx["b"])
}

func TestRunExecutesEveryNodeOnceInOrder(t *testing.T) {
	s := New(nil, nil)
	a := constNode("a", 41)
	b := addOneNode("b")
	require.NoError(t, s.Connect(a, b))

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 42, b.Output())
}

func TestRunReturnsFalseOnNodeFailure(t *testing.T) {
	s := New(nil, nil)
	a := NewNode("a", KindInput, func(context.Context, []Buffer) (Buffer, error) {
		return nil, errors.New("boom")
	}, nil, 0)
	s.AddNode(a)

	ok, err := s.Run(context.Background())
	require.False(t, ok)
	require.Error(t, err)
	require.Error(t, a.Failed())
}

func TestCancelStopsSubsequentRuns(t *testing.T) {
	s := New(nil, nil)
	a := constNode("a", 1)
	s.AddNode(a)
	s.Cancel()

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMetadataDelayMatchesSampleDelay(t *testing.T) {
	s := New(nil, nil)
	calls := 0
	src := NewNode("src", KindInput, func(context.Context, []Buffer) (Buffer, error) {
		calls++
		return calls, nil
	}, func(in []Metadata) []Metadata {
		return []Metadata{{FCT: calls}}
	}, 0)

	delayed := NewNode("delayed", KindCodec, func(_ context.Context, in []Buffer) (Buffer, error) {
		return in[0], nil
	}, nil, 1)
	require.NoError(t, s.Connect(src, delayed))

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Metadata{}, delayed.OutputMetadata()) // prefill frame

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, delayed.OutputMetadata().FCT) // first frame's metadata, delayed by one
}
