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
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sdrnet/dabmod/internal/cif"
	"github.com/sdrnet/dabmod/internal/config"
	"github.com/sdrnet/dabmod/internal/control"
	"github.com/sdrnet/dabmod/internal/dabbuf"
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
	"github.com/sdrnet/dabmod/internal/transport"
)

// nativeSampleRate is the fixed DAB transmission sample rate (2.048 MS/s)
// every transmission mode shares; only the symbol geometry varies by mode.
const nativeSampleRate = 2048000.0

// etiState shares the most recently decoded frame's timestamp between
// inputProcess and inputMetadata: the scheduler runs a node's ProcessFunc
// and then its MetadataFunc in the same Run() pass (flowgraph.go's
// nextMetadata), so the two closures below can hand data off through this
// struct instead of flowgraph threading it explicitly.
type etiState struct {
	ts eti.FrameTimestamp
}

func inputProcess(src transport.Source, reader *eti.Reader, log logctx.Sink, state *etiState, offset *control.Float64Param) flowgraph.ProcessFunc {
	return func(ctx context.Context, _ []flowgraph.Buffer) (flowgraph.Buffer, error) {
		reader.SetOffset(time.Duration(offset.Load() * float64(time.Second)))
		for {
			result, err := reader.Process()
			if err == nil {
				state.ts = result.Timestamp
				return result, nil
			}
			if err != eti.ErrInsufficientInput {
				// Sync loss and a missing FIC are both terminal: the
				// modulator cannot emit a DAB signal from this input.
				log.Error("eti: input failed", "error", err)
				return nil, err
			}
			chunk, rerr := src.Read(ctx)
			if rerr != nil {
				return nil, rerr
			}
			// An EDI source carries the UTC second count in its AF-packet
			// header; hand it to the reader so the MNSC path is bypassed.
			if edi, ok := src.(*transport.EDISource); ok {
				hdr := edi.LastHeader()
				reader.SetExternalTime(int64(hdr.Seconds) + int64(hdr.UTCO))
			}
			reader.Feed(chunk)
		}
	}
}

func inputMetadata(state *etiState) flowgraph.MetadataFunc {
	return func([]flowgraph.Metadata) []flowgraph.Metadata {
		return []flowgraph.Metadata{{
			UTCSeconds: state.ts.UTCSeconds,
			PPSTicks:   state.ts.PPSTicks,
			Valid:      state.ts.Valid,
			FCT:        state.ts.FCT,
			Refresh:    state.ts.Refresh,
		}}
	}
}

func codingProcess(ficEncoder *fic.Encoder, sources map[int]*subchannel.Source) flowgraph.ProcessFunc {
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		result, _ := in[0].(*eti.Result)
		if result == nil {
			return make([]byte, cif.TotalBits), nil
		}

		if result.SourcesChanged {
			seen := make(map[int]bool, len(result.STC))
			for _, stc := range result.STC {
				seen[stc.SCID] = true
				if _, ok := sources[stc.SCID]; !ok {
					sources[stc.SCID] = subchannel.NewSource(stc.SCID, stc.ByteLength(), stc.TPL)
				}
			}
			for scid := range sources {
				if !seen[scid] {
					delete(sources, scid)
				}
			}
		}

		entries := make([]cif.Entry, 0, len(result.STC))
		for i, stc := range result.STC {
			if i >= len(result.Subchannels) {
				break
			}
			src, ok := sources[stc.SCID]
			if !ok {
				continue
			}
			bits := src.Process(result.Subchannels[i])
			entries = append(entries, cif.Entry{StartAddress: stc.StartAddress, Bits: bits})
		}

		mux, err := cif.Mux(entries)
		if err != nil {
			return nil, err
		}

		// FIC coding is carried alongside the CIF payload but is not itself
		// placed into the fixed-size CIF (it occupies the first symbols'
		// worth of OFDM carrier capacity); ofdmProcess consumes both.
		ficBits := ficEncoder.Process(result.FIC)
		return ofdmInput{fic: ficBits, cif: mux, fct: result.FCT}, nil
	}
}

// ofdmInput is the payload codingProcess hands to ofdmProcess: the coded
// FIC bits and the muxed CIF bits for one ETI frame, plus the frame counter
// TII injection keys off.
type ofdmInput struct {
	fic []byte
	cif []byte
	fct int
}

func ofdmProcess(params ofdm.Params, diffMod *ofdm.DifferentialModulator, assembler *ofdm.Assembler, tiiGen *tii.Generator, rp *runtimeParams) flowgraph.ProcessFunc {
	bitsPerSymbol := params.Carriers * 2
	prs := ofdm.PRS(params.Carriers)
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		input, _ := in[0].(ofdmInput)

		allBits := make([]byte, 0, len(input.fic)+len(input.cif))
		allBits = append(allBits, input.fic...)
		allBits = append(allBits, input.cif...)

		need := bitsPerSymbol * params.Symbols
		if len(allBits) < need {
			padded := make([]byte, need)
			copy(padded, allBits)
			allBits = padded
		}

		diffMod.ResetToPRS(params.Carriers)

		frame := make([]complex64, 0, params.TransmissionFrameLen())

		var nullCarriers []complex64
		if tiiGen != nil && rp.tiiEnable.Load() && tii.ShouldTransmit(input.fct) {
			// Comb/pattern changes arrive through the remote-control
			// plane; out-of-range pairs are rejected there, so Set cannot
			// fail here.
			_ = tiiGen.Set(int(rp.tiiComb.Load()), int(rp.tiiPattern.Load()))
			tiiGen.SetOldVariant(rp.tiiOld.Load())
			nullCarriers = tiiGen.NullSymbolCarriers(prs)
		}
		frame = append(frame, assembler.NullSymbol(nullCarriers)...)

		for sym := 0; sym < params.Symbols; sym++ {
			off := sym * bitsPerSymbol
			mapped := ofdm.MapBits(allBits[off : off+bitsPerSymbol])
			carriers := diffMod.Next(mapped)
			frame = append(frame, assembler.DataSymbol(carriers)...)
		}

		return frame, nil
	}
}

func gainProcess(gainCtl *gain.Control, rp *runtimeParams) flowgraph.ProcessFunc {
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		gainCtl.SetDigital(rp.gainDigital.Load())
		gainCtl.SetMode(config.GainMode(rp.gainMode.Load()))
		gainCtl.SetVarianceFactor(rp.gainVar.Load())

		frame, _ := in[0].([]complex64)
		out := make([]complex64, len(frame))
		if _, err := gainCtl.Process(frame, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func firProcess(stage *firfilter.Stage, m *metrics.Metrics) flowgraph.ProcessFunc {
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		frame, _ := in[0].([]complex64)
		out := stage.Submit(frame)
		if m != nil {
			m.FIRQueueDepth.Set(float64(stage.QueueLen()))
		}
		return out, nil
	}
}

func predistortProcess(variant *atomic.Pointer[predistort.Variant], workers int) flowgraph.ProcessFunc {
	return func(ctx context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		frame, _ := in[0].([]complex64)
		return variant.Load().Process(ctx, frame, workers)
	}
}

func resampleProcess(res *resampler.Resampler) flowgraph.ProcessFunc {
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		frame, _ := in[0].([]complex64)
		return res.Process(frame), nil
	}
}

func formatProcess(conv *sampleformat.Converter, format config.SampleFormat, m *metrics.Metrics) flowgraph.ProcessFunc {
	var lastClipped uint64
	return func(_ context.Context, in []flowgraph.Buffer) (flowgraph.Buffer, error) {
		frame, _ := in[0].([]complex64)
		bps, err := sampleformat.BytesPerSample(format)
		if err != nil {
			return nil, err
		}
		// One owned, aligned buffer per frame; ownership moves to the SDR
		// worker's queue with the returned slice.
		buf := dabbuf.New(len(frame) * bps)
		out := conv.Convert(buf.Bytes()[:0], frame)
		if m != nil {
			total := conv.Clipped()
			m.GainClipped.Add(float64(total - lastClipped))
			lastClipped = total
		}
		return out, nil
	}
}

// resampleRatio reduces targetRate/nativeSampleRate to lowest terms via
// Euclid's algorithm, bounding both terms so the FFT-based resampler (which
// allocates an L*blockLen-sized transform) stays reasonable.
func resampleRatio(params ofdm.Params, targetRate float64) (l, m int, ok bool) {
	const scale = 1000
	a := int(targetRate * scale)
	b := int(nativeSampleRate * scale)
	if a <= 0 || b <= 0 {
		return 0, 0, false
	}
	g := gcd(a, b)
	l, m = a/g, b/g
	const maxTerm = 64
	for l > maxTerm || m > maxTerm {
		l = (l + 1) / 2
		m = (m + 1) / 2
	}
	if l == 0 {
		l = 1
	}
	if m == 0 {
		m = 1
	}
	return l, m, true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// runtimeParams holds the read/write controllable parameters the DSP
// closures poll once per frame, so a remote-control write takes effect on
// the next transmission frame without any cross-thread locking.
type runtimeParams struct {
	gainDigital *control.Float64Param
	gainMode    *control.EnumParam
	gainVar     *control.Float64Param

	tiiEnable  *control.BoolParam
	tiiComb    *control.IntParam
	tiiPattern *control.IntParam
	tiiOld     *control.BoolParam

	tistOffset *control.Float64Param
}

func newRuntimeParams(cfg config.Config) *runtimeParams {
	return &runtimeParams{
		gainDigital: control.NewFloat64Param("gain.digital", cfg.Gain.Digital),
		gainMode:    control.NewEnumParam("gain.mode", string(cfg.Gain.Mode), "fix", "max", "var"),
		gainVar:     control.NewFloat64Param("gain.var", cfg.Gain.VarianceFactor),
		tiiEnable:   control.NewBoolParam("tii.enable", cfg.TII.Enable),
		tiiComb:     control.NewIntParam("tii.comb", int64(cfg.TII.Comb), 0, tii.NumCombs-1),
		tiiPattern:  control.NewIntParam("tii.pattern", int64(cfg.TII.Pattern), 0, tii.NumPatterns-1),
		tiiOld:      control.NewBoolParam("tii.old_variant", cfg.TII.OldVariant),
		tistOffset:  control.NewFloat64Param("tist.offset", cfg.TimeSync.Offset.Duration().Seconds()),
	}
}

func (rp *runtimeParams) register(reg *control.Registry) {
	reg.Register(rp.gainDigital)
	reg.Register(rp.gainMode)
	reg.Register(rp.gainVar)
	reg.Register(rp.tiiEnable)
	reg.Register(rp.tiiComb)
	reg.Register(rp.tiiPattern)
	reg.Register(rp.tiiOld)
	reg.Register(rp.tistOffset)
}

func registerSDRParams(reg *control.Registry, w *sdr.Worker, device sdr.Device) {
	reg.Register(control.NewReadOnlyParam("sdr.underruns", func() string {
		return strconv.FormatUint(w.Stats().Underruns.Load(), 10)
	}))
	reg.Register(control.NewReadOnlyParam("sdr.latepackets", func() string {
		return strconv.FormatUint(w.Stats().Late.Load(), 10)
	}))
	reg.Register(control.NewReadOnlyParam("sdr.frames", func() string {
		return strconv.FormatUint(w.Stats().Frames.Load(), 10)
	}))
	reg.Register(control.NewReadOnlyParam("sdr.temp", func() string {
		t, err := device.GetTemperature()
		if err != nil {
			return "unknown"
		}
		return strconv.FormatFloat(t, 'f', 1, 64)
	}))
	reg.Register(control.NewFuncParam("sdr.muting",
		func() string { return strconv.FormatBool(w.Muted()) },
		func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			w.SetMuting(b)
			return nil
		}))
	reg.Register(control.NewFuncParam("sdr.freq",
		func() string { return strconv.FormatFloat(device.GetTXFreq(), 'f', 0, 64) },
		func(v string) error {
			hz, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			return device.Tune(context.Background(), 0, hz)
		}))
	reg.Register(control.NewFuncParam("sdr.txgain",
		func() string { return strconv.FormatFloat(device.GetTXGain(), 'f', 1, 64) },
		func(v string) error {
			g, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			return device.SetTXGain(context.Background(), g)
		}))
	reg.Register(control.NewFuncParam("sdr.bandwidth",
		func() string { return strconv.FormatFloat(device.GetBandwidth(), 'f', 0, 64) },
		func(v string) error {
			hz, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			return device.SetBandwidth(context.Background(), hz)
		}))
}

func registerFIRParams(reg *control.Registry, stage *firfilter.Stage, tapsFile string, ntaps int) {
	var curFile atomic.Value
	curFile.Store(tapsFile)
	var curTaps atomic.Int64
	curTaps.Store(int64(ntaps))

	reg.Register(control.NewReadOnlyParam("firfilter.ntaps", func() string {
		return strconv.FormatInt(curTaps.Load(), 10)
	}))
	reg.Register(control.NewFuncParam("firfilter.tapsfile",
		func() string { return curFile.Load().(string) },
		func(path string) error {
			taps, err := firfilter.LoadTapsFile(path)
			if err != nil {
				return err
			}
			stage.SetTaps(taps)
			curFile.Store(path)
			curTaps.Store(int64(len(taps)))
			return nil
		}))
}

func registerDPDParams(reg *control.Registry, variant *atomic.Pointer[predistort.Variant], coefFile string) {
	var curFile atomic.Value
	curFile.Store(coefFile)

	reg.Register(control.NewReadOnlyParam("memlesspoly.ncoefs", func() string {
		return strconv.Itoa(variant.Load().NumCoefs())
	}))
	reg.Register(control.NewReadOnlyParam("memlesspoly.coefs", func() string {
		return variant.Load().CoefsString()
	}))
	reg.Register(control.NewFuncParam("memlesspoly.coeffile",
		func() string { return curFile.Load().(string) },
		func(path string) error {
			v, err := predistort.LoadCoefFile(path)
			if err != nil {
				return err
			}
			variant.Store(v)
			curFile.Store(path)
			return nil
		}))
}
