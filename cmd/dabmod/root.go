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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/sdrnet/dabmod/internal/config"
	"github.com/sdrnet/dabmod/internal/control/remotecontrol"
	"github.com/sdrnet/dabmod/internal/logctx"
	"github.com/sdrnet/dabmod/internal/metrics"
	"github.com/sdrnet/dabmod/internal/sdr"
	"github.com/sdrnet/dabmod/internal/tracing"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewCommand builds the dabmod root command: one RunE entry point,
// version/commit carried as annotations rather than globals.
func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dabmod",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("dabmod - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := setupLogger(cfg)

	cleanup, err := tracing.Init(ctx, "dabmod", cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()
	tracer := tracing.NewTracer("dabmod")

	m := metrics.New()

	pl, err := buildPipeline(cfg, log, m, tracer)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer pl.source.Close()
	defer pl.device.Close()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	setupClockWatchdog(scheduler, cfg, pl, log, m)
	scheduler.Start()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		defer cancel()
		return pl.sdrWorker.Run(groupCtx)
	})

	group.Go(func() error {
		defer cancel()
		return runPipelineLoop(groupCtx, pl)
	})

	if cfg.MetricsBindAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsBindAddr, m)
		group.Go(func() error {
			return metricsSrv.Run(groupCtx)
		})
	}

	if cfg.RemoteControlBindAddr != "" {
		rcSrv := remotecontrol.NewServer(cfg.RemoteControlBindAddr, pl.registry, log)
		group.Go(func() error {
			return rcSrv.Run(groupCtx)
		})
	}

	setupShutdownHandlers(cancel, pl.scheduler, log, &scheduler)

	return group.Wait()
}

// runPipelineLoop drives the flowgraph scheduler one frame at a time until
// ctx is cancelled or a node fails terminally.
func runPipelineLoop(ctx context.Context, pl *pipeline) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		ok, err := pl.scheduler.Run(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// loadConfig loads the Config through configulator; runRoot validates it.
func loadConfig() (config.Config, error) {
	c := configulator.New[config.Config]()
	cfg, err := c.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return *cfg, nil
}

// setupLogger builds the tint-formatted slog.Logger installed as the
// process default, wrapped in a logctx.Sink for every stage that only
// needs the narrow logging surface.
func setupLogger(cfg config.Config) logctx.Sink {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
	return logctx.Wrap(logger)
}

// setupClockWatchdog schedules the periodic GNSS lock check driving the
// ClockDiscipline state machine: every second it reads the device's lock
// status, mutes the worker whenever the discipline isn't in the Normal
// state, and (under the crash policy) stops the pipeline on lock loss.
func setupClockWatchdog(scheduler gocron.Scheduler, cfg config.Config, pl *pipeline, log logctx.Sink, m *metrics.Metrics) {
	discipline := sdr.NewClockDiscipline(cfg.SDR.MaxGPSHoldover.Duration())
	_, err := scheduler.NewJob(
		gocron.DurationJob(time.Second),
		gocron.NewTask(func() {
			lockOK := pl.sdrDevice.IsClkSourceOK()
			deviceSecs, _ := pl.sdrDevice.GetRealSecs()
			prev := discipline.State()
			state := discipline.Tick(lockOK, float64(time.Now().Unix()), deviceSecs)
			if state != prev {
				log.Info("sdr: clock state transition", "from", prev.String(), "to", state.String())
				if state == sdr.StateHoldover && m != nil {
					m.ClockHoldovers.Inc()
				}
			}
			if !lockOK && cfg.ClockLostPolicy == config.ClockPolicyCrash {
				log.Error("sdr: reference clock lost, stopping pipeline")
				pl.scheduler.Cancel()
				return
			}
			// Force-mute outside Normal; restore the configured mute
			// state on the way back so a remote sdr.muting write is not
			// clobbered every tick.
			if state != sdr.StateNormal {
				pl.sdrWorker.SetMuting(true)
			} else if prev != sdr.StateNormal {
				pl.sdrWorker.SetMuting(cfg.SDR.Muting)
			}
		}),
	)
	if err != nil {
		log.Error("sdr: failed to schedule clock watchdog", "error", err)
	}
}

// setupShutdownHandlers starts a goroutine that waits for an
// interrupt/termination signal, then cancels the pipeline's run context and
// stops the gocron scheduler. It returns without waiting.
func setupShutdownHandlers(cancel context.CancelFunc, sched interface{ Cancel() }, log logctx.Sink, scheduler *gocron.Scheduler) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	go func() {
		sig := <-sigCh
		log.Warn("shutting down due to signal", "signal", sig.String())

		sched.Cancel()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := (*scheduler).StopJobs(); err != nil {
				log.Error("failed to stop scheduler jobs", "error", err)
			}
			if err := (*scheduler).Shutdown(); err != nil {
				log.Error("failed to stop scheduler", "error", err)
			}
		}()
		wg.Wait()

		cancel()
	}()
}
