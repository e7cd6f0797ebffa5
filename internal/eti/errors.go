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

package eti

import "errors"

// Sentinel errors for the ETI reader.
var (
	// ErrInsufficientInput is transient: the caller should retry Process
	// once more bytes are available; the reader keeps its partial state.
	ErrInsufficientInput = errors.New("eti: insufficient input for a full frame")
	// ErrMalformedFrame means no sync pattern was found within 6144 bytes.
	ErrMalformedFrame = errors.New("eti: sync pattern not found")
	// ErrFicMissing means FICF=0; this modulator cannot operate without FIC.
	ErrFicMissing = errors.New("eti: FIC not present (FICF=0)")
)
