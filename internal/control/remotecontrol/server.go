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

// Package remotecontrol implements the text remote-control protocol:
// a line-oriented "help / list / get NAME / set NAME VALUE / quit" session
// over TCP. control.Registry keys parameters by a single dotted name
// (e.g. "sdr.underruns"), so get/set take that one name rather than
// separate module and parameter arguments.
package remotecontrol

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/sdrnet/dabmod/internal/control"
	"github.com/sdrnet/dabmod/internal/logctx"
)

const banner = "dabmod remote control\nWrite 'help' for help.\n**********\n"

const helpText = `The following commands are supported:
  list
    * lists every registered parameter name
  get NAME
    * gets the value of parameter NAME
  set NAME VALUE
    * sets parameter NAME to VALUE
  quit
    * terminate this session
`

// Server accepts text remote-control sessions against a control.Registry.
type Server struct {
	addr     string
	registry *control.Registry
	log      logctx.Sink

	listener net.Listener
}

// NewServer returns a Server that will listen on addr (e.g. ":9400") once
// Run is called.
func NewServer(addr string, registry *control.Registry, log logctx.Sink) *Server {
	if log == nil {
		log = logctx.Discard()
	}
	return &Server{addr: addr, registry: registry, log: log}
}

// Run listens and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("remotecontrol: listen %s: %w", s.addr, err)
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("remotecontrol: accept: %w", err)
			}
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	if _, err := conn.Write([]byte(banner)); err != nil {
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return
		}
		reply := s.dispatch(line)
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(line string) string {
	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		return helpText

	case "list":
		names := s.registry.Names()
		sort.Strings(names)
		return strings.Join(names, " ")

	case "get":
		if len(fields) != 2 {
			return "Incorrect parameters for command 'get'"
		}
		v, err := s.registry.Get(fields[1])
		if err != nil {
			return err.Error()
		}
		return v

	case "set":
		if len(fields) != 3 {
			return "Incorrect parameters for command 'set'"
		}
		if err := s.registry.Set(fields[1], fields[2]); err != nil {
			return err.Error()
		}
		return "ok"

	default:
		return "Unknown command '" + fields[0] + "'"
	}
}
