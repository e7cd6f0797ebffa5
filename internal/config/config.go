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

// Package config describes the startup configuration of the DAB modulator
// core. It is deliberately thin: configuration file parsing, command-line
// handling, and startup wiring all live in cmd/dabmod. This package only
// defines the already-validated shape that
// cmd/dabmod produces and every internal package consumes; it never reaches
// into a DSP hot path.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from the usual "30s"/"1m"
// string form in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Config is the full startup configuration for one modulator instance.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	TransmissionMode TransmissionMode `yaml:"transmission_mode"`

	Input      InputConfig      `yaml:"input"`
	Gain       GainConfig       `yaml:"gain"`
	FIRFilter  FIRFilterConfig  `yaml:"firfilter"`
	Predistort PredistortConfig `yaml:"memlesspoly"`
	TII        TIIConfig        `yaml:"tii"`
	SDR        SDRConfig        `yaml:"sdr"`
	TimeSync   TimeSyncConfig   `yaml:"tist"`

	ClockLostPolicy ClockSourceLostPolicy `yaml:"clock_lost_policy"`

	MetricsBindAddr string `yaml:"metrics_bind_addr"`
	OTLPEndpoint    string `yaml:"otlp_endpoint"`

	RemoteControlBindAddr string `yaml:"remote_control_bind_addr"`
}

// InputConfig describes the ETI input transport.
type InputConfig struct {
	// TransportURL is one of: a file path, "tcp://host:port", or
	// "udp://:port" for EDI.
	TransportURL string `yaml:"transport"`
	Loop         bool   `yaml:"loop"`
}

// GainConfig describes the digital gain control stage.
type GainConfig struct {
	Mode           GainMode `yaml:"mode"`
	Digital        float64  `yaml:"digital"`
	VarianceFactor float64  `yaml:"var"`
}

// FIRFilterConfig describes the optional FIR filter.
type FIRFilterConfig struct {
	Enable   bool   `yaml:"enable"`
	TapsFile string `yaml:"tapsfile"`
}

// PredistortConfig describes the optional DPD stage.
type PredistortConfig struct {
	Enable   bool   `yaml:"enable"`
	CoefFile string `yaml:"coeffile"`
	Workers  int    `yaml:"workers"`
}

// TIIConfig describes TII injection.
type TIIConfig struct {
	Enable     bool `yaml:"enable"`
	Comb       int  `yaml:"comb"`
	Pattern    int  `yaml:"pattern"`
	OldVariant bool `yaml:"old_variant"`
}

// SDRConfig describes the SDR output stage.
type SDRConfig struct {
	Device          string       `yaml:"device"`
	Format          SampleFormat `yaml:"format"`
	SampleRate      float64      `yaml:"sample_rate"`
	TXGain          float64      `yaml:"txgain"`
	RXGain          float64      `yaml:"rxgain"`
	Bandwidth       float64      `yaml:"bandwidth"`
	Frequency       float64      `yaml:"freq"`
	Muting          bool         `yaml:"muting"`
	MuteNoTimestamp bool         `yaml:"mute_no_timestamps"`
	Synchronous     bool         `yaml:"synchronous"`
	MaxGPSHoldover  Duration     `yaml:"max_gps_holdover"`
}

// TimeSyncConfig describes the tist.* controllable parameters.
type TimeSyncConfig struct {
	Offset Duration `yaml:"offset"`
}

// Default returns a Config with conservative defaults: mode I, var gain,
// synchronous transmission disabled so a freshly built instance can run
// against a file without hardware.
func Default() Config {
	return Config{
		LogLevel:         LogLevelInfo,
		TransmissionMode: ModeI,
		Gain: GainConfig{
			Mode:           GainModeVar,
			Digital:        1.0,
			VarianceFactor: 4.0,
		},
		SDR: SDRConfig{
			Format:          FormatComplexFloat,
			SampleRate:      2048000,
			MuteNoTimestamp: true,
			Synchronous:     false,
			MaxGPSHoldover:  Duration(10 * time.Second),
		},
		ClockLostPolicy: ClockPolicyIgnore,
	}
}
