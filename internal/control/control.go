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

// Package control implements the controllable-parameter registry a
// remote-control plane talks to. The core never runs a remote-control server
// itself (out of scope); it only owns the Registry that such a front end
// reads and writes, and the DSP stages that register their own parameters
// into it at construction time instead of through a package-level
// singleton.
package control

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// Parameter is one runtime-inspectable/modifiable value. Get
// and Set operate on string representations so a text-protocol front end
// (internal/control/remotecontrol) never needs per-type dispatch logic.
type Parameter interface {
	// Name is the dotted controllable-parameter name, e.g. "gain.digital".
	Name() string
	// Get renders the parameter's current value as a string.
	Get() string
	// Set parses and applies a new value. ReadOnly parameters return
	// ErrReadOnly.
	Set(value string) error
	// ReadOnly reports whether Set always fails, so a front end can filter
	// a parameter list without attempting (and counting) a failing write.
	ReadOnly() bool
}

// ErrReadOnly is returned by Set on a read-only Parameter.
var ErrReadOnly = fmt.Errorf("control: parameter is read-only")

// ErrUnknownParameter is returned by Registry.Get/Set for a name that was
// never registered.
var ErrUnknownParameter = fmt.Errorf("control: unknown parameter")

// Registry is a concurrent-safe set of Parameters, keyed by name. It is
// backed by xsync.Map so the SDR clock state machine and the
// remote-control front end can read and write it without a registry-wide
// mutex.
type Registry struct {
	params *xsync.Map[string, Parameter]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{params: xsync.NewMap[string, Parameter]()}
}

// Register adds p to the registry under its own Name(). A later
// registration with the same name replaces the earlier one.
func (r *Registry) Register(p Parameter) {
	r.params.Store(p.Name(), p)
}

// Get returns the named parameter's current string value.
func (r *Registry) Get(name string) (string, error) {
	p, ok := r.params.Load(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return p.Get(), nil
}

// Set applies value to the named parameter.
func (r *Registry) Set(name, value string) error {
	p, ok := r.params.Load(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	if err := p.Set(value); err != nil {
		return fmt.Errorf("control: setting %s: %w", name, err)
	}
	return nil
}

// Names returns every registered parameter name, for a front end's listing
// command.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.params.Size())
	r.params.Range(func(name string, _ Parameter) bool {
		names = append(names, name)
		return true
	})
	return names
}
