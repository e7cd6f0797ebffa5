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

package transport

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileChunkSize is how many bytes FileSource reads per Read call.
const FileChunkSize = 6144 * 4

// FileSource reads ETI bytes from a seekable file, optionally looping back
// to the start on EOF.
type FileSource struct {
	f    *os.File
	loop bool
	buf  []byte
}

// OpenFile opens path for a FileSource. loop controls whether Read rewinds
// to the start of the file on EOF instead of returning io.EOF.
func OpenFile(path string, loop bool) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", path, err)
	}
	return &FileSource{f: f, loop: loop, buf: make([]byte, FileChunkSize)}, nil
}

// Read returns the next chunk of file bytes. With loop enabled, reaching
// EOF seeks back to offset 0 and returns the next chunk from there instead
// of signalling end-of-stream.
func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.f.Read(s.buf)
	if n > 0 {
		out := make([]byte, n)
		copy(out, s.buf[:n])
		return out, nil
	}
	if err == io.EOF {
		if !s.loop {
			return nil, io.EOF
		}
		if _, serr := s.f.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("transport: rewind: %w", serr)
		}
		return s.Read(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("transport: read: %w", err)
	}
	return nil, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}
