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

// Package flowgraph implements the static dataflow scheduler:
// a directed acyclic graph of stages, each a sum-type Kind
// (Input/Codec/Mux/Output) rather than a base class with virtual
// dispatch, executed once per Run() call in a fixed
// topological node order that connect() maintains automatically.
package flowgraph

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sdrnet/dabmod/internal/logctx"
	"github.com/sdrnet/dabmod/internal/tracing"
)

// Kind is one of the four stage arities.
type Kind int

const (
	// KindInput is a 0-in, 1-out stage (e.g. the ETI reader).
	KindInput Kind = iota
	// KindCodec is a 1-in, 1-out stage (e.g. gain control, the FIR filter).
	KindCodec
	// KindMux is an N-in, 1-out stage (e.g. the CIF multiplexer).
	KindMux
	// KindOutput is a 1-in, 0-out stage (e.g. the SDR output stage).
	KindOutput
)

// Buffer is the payload one edge of the graph carries between two nodes.
// Its concrete type varies by stage pairing (decoded ETI fields, coded bit
// slices, complex64 symbol buffers, or final wire bytes); the scheduler
// itself is payload-agnostic. Buffers are explicit per-edge owned values
// that move across stage boundaries instead of being shared or
// reallocated.
type Buffer = any

// Metadata is the parallel-lane record that travels alongside a Buffer:
// a timestamp,
// frame counter, and discontinuity flag. Concrete producers populate this
// from eti.FrameTimestamp; the scheduler only threads it through.
type Metadata struct {
	UTCSeconds int64
	PPSTicks   int64
	Valid      bool
	FCT        int
	Refresh    bool
}

// ProcessFunc runs one node's transformation for a single frame step. For
// KindInput nodes, inputs is always empty. For KindOutput nodes, the
// returned Buffer is ignored (conventionally nil).
type ProcessFunc func(ctx context.Context, inputs []Buffer) (Buffer, error)

// MetadataFunc transforms a node's incoming metadata (one entry per input
// edge, in edge-registration order) into its outgoing metadata.
// A nil MetadataFunc passes the first input's metadata through unchanged
// (the common case for codec stages with no frame delay).
type MetadataFunc func(in []Metadata) []Metadata

// Node is one stage in the graph.
type Node struct {
	Name string
	Kind Kind

	process  ProcessFunc
	metaFn   MetadataFunc
	metaDelay int // frames of queued-metadata delay this node introduces

	inputs []*Node
	buf    Buffer
	meta   Metadata
	metaQ  []Metadata

	failed error
}

// NewNode builds a detached Node. metaDelay, when non-zero, makes the node
// queue its computed outgoing metadata for that many frames before
// emitting it, mirroring a pipelined stage's sample delay.
func NewNode(name string, kind Kind, process ProcessFunc, metaFn MetadataFunc, metaDelay int) *Node {
	return &Node{Name: name, Kind: kind, process: process, metaFn: metaFn, metaDelay: metaDelay}
}

// Output returns the node's most recently produced buffer.
func (n *Node) Output() Buffer { return n.buf }

// OutputMetadata returns the metadata the node emitted alongside its most
// recent output.
func (n *Node) OutputMetadata() Metadata { return n.meta }

// Failed reports the terminal error that stopped this node, if any.
func (n *Node) Failed() error { return n.failed }

// Fail marks the node as terminally failed for this and all subsequent
// run() calls.
func (n *Node) Fail(err error) { n.failed = err }

// Scheduler owns a node list in topological order and the buffers edges
// carry between them.
type Scheduler struct {
	nodes   []*Node
	log     logctx.Sink
	tracer  *tracing.Tracer
	cancel  atomic.Bool
	durations map[string]time.Duration
}

// New returns an empty Scheduler.
func New(log logctx.Sink, tracer *tracing.Tracer) *Scheduler {
	if log == nil {
		log = logctx.Discard()
	}
	return &Scheduler{log: log, tracer: tracer, durations: make(map[string]time.Duration)}
}

// AddNode appends n to the end of the node list if it is not already
// present.
func (s *Scheduler) AddNode(n *Node) {
	if s.indexOf(n) >= 0 {
		return
	}
	s.nodes = append(s.nodes, n)
}

func (s *Scheduler) indexOf(n *Node) int {
	for i, existing := range s.nodes {
		if existing == n {
			return i
		}
	}
	return -1
}

// Connect wires src's output as one of dst's inputs, in the order Connect
// is called for dst (so a Mux node's input order is the Connect call
// order). If dst is already
// positioned at or before src in the node list, dst (and nothing else) is
// rotated to immediately follow src.
func (s *Scheduler) Connect(src, dst *Node) error {
	s.AddNode(src)
	s.AddNode(dst)

	srcIdx := s.indexOf(src)
	dstIdx := s.indexOf(dst)
	if dstIdx <= srcIdx {
		s.nodes = append(s.nodes[:dstIdx], s.nodes[dstIdx+1:]...)
		srcIdx = s.indexOf(src)
		s.nodes = append(s.nodes[:srcIdx+1], append([]*Node{dst}, s.nodes[srcIdx+1:]...)...)
	}

	dst.inputs = append(dst.inputs, src)
	return nil
}

// Cancel requests the scheduler stop after the in-flight frame finishes.
func (s *Scheduler) Cancel() { s.cancel.Store(true) }

// Cancelled reports whether Cancel has been called.
func (s *Scheduler) Cancelled() bool { return s.cancel.Load() }

// StageDuration returns the wall-clock processing time accumulated for the
// named node over every Run call so far, for statistics/metrics export.
func (s *Scheduler) StageDuration(name string) time.Duration { return s.durations[name] }

// Nodes returns the scheduler's node list in topological (execution)
// order, for callers that need to inspect wiring (e.g. tests, metadata
// delay accounting).
func (s *Scheduler) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Run executes every node once, in list order, threading each node's
// inputs' most recent outputs into it. It returns false (without error) if
// cancellation was requested before this call, and false with the
// terminal error if any node fails.
func (s *Scheduler) Run(ctx context.Context) (bool, error) {
	if s.cancel.Load() {
		return false, nil
	}

	for _, n := range s.nodes {
		inputs := make([]Buffer, len(n.inputs))
		inMeta := make([]Metadata, len(n.inputs))
		for i, in := range n.inputs {
			inputs[i] = in.buf
			inMeta[i] = in.meta
		}

		start := time.Now()
		nodeCtx := ctx
		var spanEnd func()
		if s.tracer != nil {
			nodeCtx, spanEnd = s.tracer.StageSpan(ctx, n.Name)
		}
		out, err := n.process(nodeCtx, inputs)
		if spanEnd != nil {
			spanEnd()
		}
		s.durations[n.Name] += time.Since(start)

		if err != nil {
			n.Fail(err)
			s.log.Error("flowgraph: node failed", "node", n.Name, "error", err)
			return false, fmt.Errorf("flowgraph: node %s: %w", n.Name, err)
		}
		n.buf = out
		n.meta = s.nextMetadata(n, inMeta)
	}
	return true, nil
}

// nextMetadata computes a node's outgoing metadata for this frame,
// applying its MetadataFunc (or pass-through) and then its queued delay.
func (s *Scheduler) nextMetadata(n *Node, inMeta []Metadata) Metadata {
	var out Metadata
	if n.metaFn != nil {
		produced := n.metaFn(inMeta)
		if len(produced) > 0 {
			out = produced[len(produced)-1]
		}
	} else if len(inMeta) > 0 {
		out = inMeta[0]
	}

	if n.metaDelay <= 0 {
		return out
	}
	n.metaQ = append(n.metaQ, out)
	if len(n.metaQ) <= n.metaDelay {
		return Metadata{}
	}
	delayed := n.metaQ[0]
	n.metaQ = n.metaQ[1:]
	return delayed
}
