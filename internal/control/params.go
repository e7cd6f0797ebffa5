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

package control

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Float64Param is a read/write float64 controllable parameter backed by an
// atomic value, e.g. gain.digital, tist.offset.
type Float64Param struct {
	name string
	bits atomic.Uint64
}

// NewFloat64Param returns a Float64Param named name, initialised to
// initial.
func NewFloat64Param(name string, initial float64) *Float64Param {
	p := &Float64Param{name: name}
	p.Store(initial)
	return p
}

func (p *Float64Param) Name() string   { return p.name }
func (p *Float64Param) ReadOnly() bool { return false }

// Load returns the parameter's current value.
func (p *Float64Param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Store sets the parameter's value directly, for DSP-side writers that
// don't go through the string Set interface.
func (p *Float64Param) Store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

func (p *Float64Param) Get() string { return strconv.FormatFloat(p.Load(), 'g', -1, 64) }

func (p *Float64Param) Set(value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid float64 %q: %w", value, err)
	}
	p.Store(v)
	return nil
}

// BoolParam is a read/write boolean controllable parameter, e.g.
// sdr.muting, tii.enable.
type BoolParam struct {
	name string
	v    atomic.Bool
}

// NewBoolParam returns a BoolParam named name, initialised to initial.
func NewBoolParam(name string, initial bool) *BoolParam {
	p := &BoolParam{name: name}
	p.v.Store(initial)
	return p
}

func (p *BoolParam) Name() string   { return p.name }
func (p *BoolParam) ReadOnly() bool { return false }
func (p *BoolParam) Load() bool     { return p.v.Load() }
func (p *BoolParam) Store(v bool)   { p.v.Store(v) }
func (p *BoolParam) Get() string    { return strconv.FormatBool(p.Load()) }

func (p *BoolParam) Set(value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid bool %q: %w", value, err)
	}
	p.Store(v)
	return nil
}

// IntParam is a read/write integer controllable parameter, e.g. tii.comb,
// tii.pattern.
type IntParam struct {
	name string
	v    atomic.Int64
	min  int64
	max  int64
}

// NewIntParam returns an IntParam named name, initialised to initial and
// constrained to [min, max] (inclusive) on every Set.
func NewIntParam(name string, initial, min, max int64) *IntParam {
	p := &IntParam{name: name, min: min, max: max}
	p.v.Store(initial)
	return p
}

func (p *IntParam) Name() string   { return p.name }
func (p *IntParam) ReadOnly() bool { return false }
func (p *IntParam) Load() int64    { return p.v.Load() }
func (p *IntParam) Get() string    { return strconv.FormatInt(p.Load(), 10) }

func (p *IntParam) Set(value string) error {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid int %q: %w", value, err)
	}
	if v < p.min || v > p.max {
		return fmt.Errorf("value %d out of range [%d,%d]", v, p.min, p.max)
	}
	p.v.Store(v)
	return nil
}

// EnumParam is a read/write string controllable parameter constrained to a
// fixed set of values, e.g. gain.mode.
type EnumParam struct {
	name    string
	allowed map[string]bool
	current atomic.Value
}

// NewEnumParam returns an EnumParam named name, initialised to initial,
// restricted to the given allowed values.
func NewEnumParam(name, initial string, allowed ...string) *EnumParam {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	p := &EnumParam{name: name, allowed: set}
	p.current.Store(initial)
	return p
}

func (p *EnumParam) Name() string   { return p.name }
func (p *EnumParam) ReadOnly() bool { return false }
func (p *EnumParam) Load() string   { return p.current.Load().(string) }
func (p *EnumParam) Get() string    { return p.Load() }

func (p *EnumParam) Set(value string) error {
	if !p.allowed[value] {
		return fmt.Errorf("value %q not among allowed values", value)
	}
	p.current.Store(value)
	return nil
}

// FuncParam adapts a get/set function pair into a Parameter, for values
// whose storage lives elsewhere, e.g. sdr.freq and sdr.txgain writing
// through to the device.
type FuncParam struct {
	name string
	get  func() string
	set  func(string) error
}

// NewFuncParam returns a FuncParam named name backed by get and set.
func NewFuncParam(name string, get func() string, set func(string) error) *FuncParam {
	return &FuncParam{name: name, get: get, set: set}
}

func (p *FuncParam) Name() string          { return p.name }
func (p *FuncParam) ReadOnly() bool        { return false }
func (p *FuncParam) Get() string           { return p.get() }
func (p *FuncParam) Set(value string) error { return p.set(value) }

// ReadOnlyParam wraps a getter function as a read-only controllable
// parameter, e.g. sdr.temp, sdr.underruns, sdr.frames, tist.timestamp.
type ReadOnlyParam struct {
	name string
	get  func() string
}

// NewReadOnlyParam returns a ReadOnlyParam named name whose Get calls get.
func NewReadOnlyParam(name string, get func() string) *ReadOnlyParam {
	return &ReadOnlyParam{name: name, get: get}
}

func (p *ReadOnlyParam) Name() string   { return p.name }
func (p *ReadOnlyParam) ReadOnly() bool { return true }
func (p *ReadOnlyParam) Get() string    { return p.get() }
func (p *ReadOnlyParam) Set(string) error {
	return ErrReadOnly
}
