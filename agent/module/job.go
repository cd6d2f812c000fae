// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/pageskr/ha-mysql-monitor/logger"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

type JobConfig struct {
	Name        string
	ModuleName  string
	Module      Module
	UpdateEvery int

	// OnSnapshot receives the snapshot of every successful cycle.
	OnSnapshot func(*snapshot.Snapshot)
	// OnFail receives the error of every failed cycle. The previous
	// snapshot is never re-published on failure.
	OnFail func(error)

	AutoDetectEvery int
}

const (
	penaltyStep = 5
	maxPenalty  = 600
	infTries    = -1
)

func NewJob(cfg JobConfig) *Job {
	if cfg.UpdateEvery == 0 {
		cfg.UpdateEvery = 1
	}

	j := &Job{
		AutoDetectEvery: cfg.AutoDetectEvery,
		AutoDetectTries: infTries,

		name:        cfg.Name,
		moduleName:  cfg.ModuleName,
		updateEvery: cfg.UpdateEvery,
		module:      cfg.Module,
		onSnapshot:  cfg.OnSnapshot,
		onFail:      cfg.OnFail,
		stop:        make(chan struct{}),
		tick:        make(chan int),
	}

	log := logger.New().With(
		slog.String("collector", j.ModuleName()),
		slog.String("job", j.Name()),
	)

	j.Logger = log
	if j.module != nil {
		j.module.GetBase().Logger = log
	}

	return j
}

// Job represents a job. It's a module wrapper that drives the polling loop.
type Job struct {
	name       string
	moduleName string

	updateEvery     int
	AutoDetectEvery int
	AutoDetectTries int

	*logger.Logger

	module Module

	initialized bool
	panicked    bool

	onSnapshot func(*snapshot.Snapshot)
	onFail     func(error)

	tick chan int

	retries int
	prevRun time.Time

	stop chan struct{}
}

// ModuleName returns job module name.
func (j *Job) ModuleName() string {
	return j.moduleName
}

// Name returns job name.
func (j *Job) Name() string {
	return j.name
}

// Panicked returns 'panicked' flag value.
func (j *Job) Panicked() bool {
	return j.panicked
}

// RetryAutoDetection returns whether it is needed to retry autodetection.
func (j *Job) RetryAutoDetection() bool {
	return j.AutoDetectEvery > 0 && (j.AutoDetectTries == infTries || j.AutoDetectTries > 0)
}

func (j *Job) Configuration() any {
	return j.module.Configuration()
}

// AutoDetection invokes init and check. It handles panic.
func (j *Job) AutoDetection(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic %v", r)
			j.panicked = true
			j.disableAutoDetection()

			j.Errorf("PANIC %v", r)
			if logger.Level.Enabled(slog.LevelDebug) {
				j.Errorf("STACK: %s", debug.Stack())
			}
		}
		if err != nil {
			j.module.Cleanup(ctx)
		}
	}()

	if err = j.init(ctx); err != nil {
		j.Errorf("init failed: %v", err)
		j.disableAutoDetection()
		return err
	}

	if err = j.check(ctx); err != nil {
		j.Errorf("check failed: %v", err)
		return err
	}

	j.Info("check success")

	return nil
}

// Tick offers a clock tick to the job. If the previous cycle is still
// running the tick is dropped, so cycles never overlap or queue up.
func (j *Job) Tick(clock int) {
	select {
	case j.tick <- clock:
	default:
		j.Debug("skip the tick due to previous run hasn't been finished")
	}
}

// Start starts job main loop.
func (j *Job) Start(ctx context.Context) {
	j.Infof("started, data collection interval %ds", j.updateEvery)
	defer func() { j.Info("stopped") }()

LOOP:
	for {
		select {
		case <-j.stop:
			break LOOP
		case t := <-j.tick:
			if t%(j.updateEvery+j.penalty()) == 0 {
				j.runOnce(ctx)
			}
		}
	}
	j.module.Cleanup(ctx)
	j.stop <- struct{}{}
}

// Stop stops job main loop. It blocks until the job is stopped.
func (j *Job) Stop() {
	j.stop <- struct{}{}
	<-j.stop
}

func (j *Job) disableAutoDetection() {
	j.AutoDetectEvery = 0
}

func (j *Job) init(ctx context.Context) error {
	if j.initialized {
		return nil
	}

	if err := j.module.Init(ctx); err != nil {
		return err
	}

	j.initialized = true

	return nil
}

func (j *Job) check(ctx context.Context) error {
	if err := j.module.Check(ctx); err != nil {
		if j.AutoDetectTries != infTries {
			j.AutoDetectTries--
		}
		return err
	}
	return nil
}

func (j *Job) runOnce(ctx context.Context) {
	curTime := time.Now()
	j.prevRun = curTime

	sn, err := j.collect(ctx)

	if j.panicked {
		return
	}

	if err != nil {
		j.retries++
		j.Errorf("collection failed: %v", err)
		if j.onFail != nil {
			j.onFail(err)
		}
		return
	}

	j.retries = 0
	if j.onSnapshot != nil {
		j.onSnapshot(sn)
	}
}

func (j *Job) collect(ctx context.Context) (sn *snapshot.Snapshot, err error) {
	j.panicked = false
	defer func() {
		if r := recover(); r != nil {
			j.panicked = true
			j.Errorf("PANIC: %v", r)
			if logger.Level.Enabled(slog.LevelDebug) {
				j.Errorf("STACK: %s", debug.Stack())
			}
		}
	}()
	return j.module.Collect(ctx)
}

func (j *Job) penalty() int {
	v := j.retries / penaltyStep * penaltyStep * j.updateEvery / 2
	if v > maxPenalty {
		return maxPenalty
	}
	return v
}
