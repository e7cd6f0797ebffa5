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

package config_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sdrnet/dabmod/internal/config"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const exampleYAML = `
log_level: debug
transmission_mode: 1
input:
  transport: test.eti
  loop: true
gain:
  mode: var
  digital: 0.8
  var: 4.0
tii:
  enable: true
  comb: 3
  pattern: 42
sdr:
  device: file:out.iq
  format: s16
  sample_rate: 2048000
  freq: 222064000
  txgain: 60
  synchronous: true
  mute_no_timestamps: true
  max_gps_holdover: 30s
tist:
  offset: 1s
clock_lost_policy: ignore
`

func TestUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(exampleYAML), &cfg))
	require.NoError(t, cfg.Validate())

	want := config.Config{
		LogLevel:         config.LogLevelDebug,
		TransmissionMode: config.ModeI,
		Input: config.InputConfig{
			TransportURL: "test.eti",
			Loop:         true,
		},
		Gain: config.GainConfig{
			Mode:           config.GainModeVar,
			Digital:        0.8,
			VarianceFactor: 4.0,
		},
		TII: config.TIIConfig{
			Enable:  true,
			Comb:    3,
			Pattern: 42,
		},
		SDR: config.SDRConfig{
			Device:          "file:out.iq",
			Format:          config.FormatS16,
			SampleRate:      2048000,
			Frequency:       222064000,
			TXGain:          60,
			Synchronous:     true,
			MuteNoTimestamp: true,
			MaxGPSHoldover:  config.Duration(30 * time.Second),
		},
		TimeSync:        config.TimeSyncConfig{Offset: config.Duration(time.Second)},
		ClockLostPolicy: config.ClockPolicyIgnore,
	}
	if !cmp.Equal(want, cfg) {
		t.Errorf("config did not decode properly: %s", cmp.Diff(want, cfg))
	}
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Input.TransportURL = "test.eti"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"mode", func(c *config.Config) { c.TransmissionMode = 9 }, config.ErrInvalidTransmissionMode},
		{"gain mode", func(c *config.Config) { c.Gain.Mode = "loud" }, config.ErrInvalidGainMode},
		{"var factor", func(c *config.Config) { c.Gain.VarianceFactor = 0 }, config.ErrInvalidGainVarFactor},
		{"format", func(c *config.Config) { c.SDR.Format = "f64" }, config.ErrInvalidSampleFormat},
		{"transport", func(c *config.Config) { c.Input.TransportURL = "" }, config.ErrInvalidInputTransport},
		{"comb", func(c *config.Config) { c.TII.Enable = true; c.TII.Comb = 24 }, config.ErrInvalidTIIComb},
		{"pattern", func(c *config.Config) { c.TII.Enable = true; c.TII.Pattern = 70 }, config.ErrInvalidTIIPattern},
		{"clock policy", func(c *config.Config) { c.ClockLostPolicy = "panic" }, config.ErrInvalidClockPolicy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Input.TransportURL = "test.eti"
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}
