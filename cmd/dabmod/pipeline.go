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

package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sdrnet/dabmod/internal/config"
	"github.com/sdrnet/dabmod/internal/control"
	"github.com/sdrnet/dabmod/internal/eti"
	"github.com/sdrnet/dabmod/internal/fic"
	"github.com/sdrnet/dabmod/internal/firfilter"
	"github.com/sdrnet/dabmod/internal/flowgraph"
	"github.com/sdrnet/dabmod/internal/gain"
	"github.com/sdrnet/dabmod/internal/logctx"
	"github.com/sdrnet/dabmod/internal/metrics"
	"github.com/sdrnet/dabmod/internal/ofdm"
	"github.com/sdrnet/dabmod/internal/predistort"
	"github.com/sdrnet/dabmod/internal/resampler"
	"github.com/sdrnet/dabmod/internal/sampleformat"
	"github.com/sdrnet/dabmod/internal/sdr"
	"github.com/sdrnet/dabmod/internal/subchannel"
	"github.com/sdrnet/dabmod/internal/tii"
	"github.com/sdrnet/dabmod/internal/tracing"
	"github.com/sdrnet/dabmod/internal/transport"
)

// pipeline owns every stage built from cfg, wired into one flowgraph.Scheduler,
// plus the handles cmd/dabmod needs to drive and tear it down.
type pipeline struct {
	scheduler *flowgraph.Scheduler
	source    transport.Source
	reader    *eti.Reader
	sdrWorker *sdr.Worker
	sdrDevice sdr.Device
	device    closer
	registry  *control.Registry
}

type closer interface {
	Close() error
}

// buildPipeline wires every DSP stage into a single flowgraph.Scheduler
// before the shutdown handlers are installed: one
// function, one pass, returning everything the caller needs to run and stop
// it.
func buildPipeline(cfg config.Config, log logctx.Sink, m *metrics.Metrics, tracer *tracing.Tracer) (*pipeline, error) {
	src, err := openSource(cfg.Input, log)
	if err != nil {
		return nil, err
	}

	reader := eti.NewReader()
	reader.SetOffset(cfg.TimeSync.Offset.Duration())

	params, err := ofdm.ParamsForMode(int(cfg.TransmissionMode))
	if err != nil {
		return nil, err
	}

	ficEncoder := fic.NewEncoder()
	sources := make(map[int]*subchannel.Source)

	diffMod := ofdm.NewDifferentialModulator(params.Carriers)
	assembler := ofdm.NewAssembler(params)

	// TII patterns are only defined for modes I and II; in the other
	// modes the generator stays nil and the null symbol is always silent.
	var tiiGen *tii.Generator
	if params.Carriers == 1536 || params.Carriers == 384 {
		tiiGen, err = tii.New(params.Carriers, cfg.TII.Comb, cfg.TII.Pattern, cfg.TII.OldVariant)
		if err != nil {
			return nil, fmt.Errorf("cmd/dabmod: building tii generator: %w", err)
		}
	} else if cfg.TII.Enable {
		return nil, fmt.Errorf("cmd/dabmod: TII is not available in transmission mode %d", cfg.TransmissionMode)
	}

	gainCtl, err := gain.New(params.TransmissionFrameLen(), cfg.Gain.Mode, cfg.Gain.Digital, cfg.Gain.VarianceFactor)
	if err != nil {
		return nil, fmt.Errorf("cmd/dabmod: building gain control: %w", err)
	}

	registry := control.NewRegistry()
	rp := newRuntimeParams(cfg)
	rp.register(registry)

	sched := flowgraph.New(log, tracer)

	etiSt := &etiState{}
	inputNode := flowgraph.NewNode("eti-input", flowgraph.KindInput,
		inputProcess(src, reader, log, etiSt, rp.tistOffset), inputMetadata(etiSt), 0)
	sched.AddNode(inputNode)
	registry.Register(control.NewReadOnlyParam("tist.timestamp", func() string {
		return etiSt.ts.String()
	}))
	registry.Register(control.NewReadOnlyParam("tist.timestamp0", func() string {
		ts, ok := reader.FCT0Timestamp()
		if !ok {
			return "unknown"
		}
		return ts.String()
	}))

	codingNode := flowgraph.NewNode("channel-coding", flowgraph.KindCodec,
		codingProcess(ficEncoder, sources), nil, 0)
	if err := sched.Connect(inputNode, codingNode); err != nil {
		return nil, err
	}

	ofdmNode := flowgraph.NewNode("ofdm-assembly", flowgraph.KindCodec,
		ofdmProcess(params, diffMod, assembler, tiiGen, rp), nil, 0)
	if err := sched.Connect(codingNode, ofdmNode); err != nil {
		return nil, err
	}

	gainNode := flowgraph.NewNode("gain", flowgraph.KindCodec,
		gainProcess(gainCtl, rp), nil, 0)
	if err := sched.Connect(ofdmNode, gainNode); err != nil {
		return nil, err
	}

	lastNode := gainNode

	if cfg.FIRFilter.Enable {
		taps, err := firfilter.LoadTapsFile(cfg.FIRFilter.TapsFile)
		if err != nil {
			return nil, fmt.Errorf("cmd/dabmod: loading FIR taps: %w", err)
		}
		filter := firfilter.New(taps)
		frameLen := params.TransmissionFrameLen()
		stage := firfilter.NewStage(context.Background(), filter, frameLen)
		registerFIRParams(registry, stage, cfg.FIRFilter.TapsFile, len(taps))
		firNode := flowgraph.NewNode("firfilter", flowgraph.KindCodec,
			firProcess(stage, m), nil, 1)
		if err := sched.Connect(lastNode, firNode); err != nil {
			return nil, err
		}
		lastNode = firNode
	}

	if cfg.Predistort.Enable {
		variant, err := predistort.LoadCoefFile(cfg.Predistort.CoefFile)
		if err != nil {
			return nil, fmt.Errorf("cmd/dabmod: loading predistortion coefficients: %w", err)
		}
		workers := cfg.Predistort.Workers
		if workers <= 0 {
			workers = 1
		}
		var variantPtr atomic.Pointer[predistort.Variant]
		variantPtr.Store(variant)
		registerDPDParams(registry, &variantPtr, cfg.Predistort.CoefFile)
		dpdNode := flowgraph.NewNode("predistort", flowgraph.KindCodec,
			predistortProcess(&variantPtr, workers), nil, 0)
		if err := sched.Connect(lastNode, dpdNode); err != nil {
			return nil, err
		}
		lastNode = dpdNode
	}

	if cfg.SDR.SampleRate > 0 {
		l, mDen, ok := resampleRatio(params, cfg.SDR.SampleRate)
		if ok && (l != 1 || mDen != 1) {
			res, err := resampler.New(l, mDen, params.TransmissionFrameLen())
			if err != nil {
				return nil, fmt.Errorf("cmd/dabmod: building resampler: %w", err)
			}
			resNode := flowgraph.NewNode("resample", flowgraph.KindCodec,
				resampleProcess(res), nil, 0)
			if err := sched.Connect(lastNode, resNode); err != nil {
				return nil, err
			}
			lastNode = resNode
		}
	}

	formatConv, err := sampleformat.New(cfg.SDR.Format)
	if err != nil {
		return nil, fmt.Errorf("cmd/dabmod: building sample format converter: %w", err)
	}
	formatNode := flowgraph.NewNode("sampleformat", flowgraph.KindCodec,
		formatProcess(formatConv, cfg.SDR.Format, m), nil, 0)
	if err := sched.Connect(lastNode, formatNode); err != nil {
		return nil, err
	}

	device, err := sdr.OpenFileDevice(cfg.SDR.Device)
	if err != nil {
		return nil, err
	}
	worker := sdr.NewWorker(device, log, cfg.SDR.Synchronous, cfg.SDR.MuteNoTimestamp, nil)
	worker.SetMuting(cfg.SDR.Muting)
	registerSDRParams(registry, worker, device)

	outputNode := sdr.NewOutputNode("sdr-output", worker, formatNode)
	if err := sched.Connect(formatNode, outputNode); err != nil {
		return nil, err
	}

	return &pipeline{
		scheduler: sched,
		source:    src,
		reader:    reader,
		sdrWorker: worker,
		sdrDevice: device,
		device:    device,
		registry:  registry,
	}, nil
}

func openSource(cfg config.InputConfig, log logctx.Sink) (transport.Source, error) {
	switch {
	case hasPrefix(cfg.TransportURL, "tcp://"):
		return transport.DialTCP(cfg.TransportURL[len("tcp://"):], log), nil
	case hasPrefix(cfg.TransportURL, "udp://:"):
		port, err := parsePort(cfg.TransportURL[len("udp://:"):])
		if err != nil {
			return nil, fmt.Errorf("cmd/dabmod: parsing edi port: %w", err)
		}
		return transport.ListenEDI(port, log)
	default:
		return transport.OpenFile(cfg.TransportURL, cfg.Loop)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, err
	}
	return port, nil
}
