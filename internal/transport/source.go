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

// Package transport implements the ETI input adapters:
// a seekable file source, an auto-reconnecting TCP client, and an
// EDI-over-UDP source. All three feed raw bytes to an internal/eti.Reader,
// which owns framing autodetection; this package only knows how to get
// bytes off a transport.
package transport

import (
	"context"
	"time"
)

// Source is the common contract every input transport satisfies: Read
// blocks until at least one chunk of ingress bytes is available, returning
// them for the caller to feed into an eti.Reader.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// ReconnectMin is the minimum backoff between reconnect attempts for
// transports that dial out.
const ReconnectMin = 1 * time.Second
