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

// Package logctx carries the narrow logging sink the core talks through.
//
// No package in this module keeps a package-level *slog.Logger. cmd/dabmod builds one *slog.Logger at
// startup (tint-formatted for a terminal) and every stage, worker, and the
// scheduler receive it (or a narrower Sink) at construction time.
package logctx

import "log/slog"

// Sink is the logging capability a DSP stage is allowed: structured records
// at a handful of levels, nothing else. Stages never reach for os.Stdout or
// fmt.Println directly.
type Sink interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Sink
}

// slogSink adapts *slog.Logger to Sink.
type slogSink struct {
	l *slog.Logger
}

// Wrap adapts an existing *slog.Logger into a Sink.
func Wrap(l *slog.Logger) Sink {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return slogSink{l: l}
}

func (s slogSink) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogSink) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogSink) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogSink) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s slogSink) With(args ...any) Sink         { return slogSink{l: s.l.With(args...)} }

// Discard is a Sink that drops every record, used in tests that do not care
// about log output.
func Discard() Sink { return Wrap(nil) }
