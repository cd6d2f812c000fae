// SPDX-License-Identifier: GPL-3.0-or-later

// mysqlmond polls a MySQL/MariaDB server on a fixed interval and emits one
// JSON snapshot per cycle on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"

	"github.com/pageskr/ha-mysql-monitor/agent/module"
	"github.com/pageskr/ha-mysql-monitor/collector/mysql"
	"github.com/pageskr/ha-mysql-monitor/logger"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

var version = "v0.1.0"

type options struct {
	ConfigFile string `short:"c" long:"config" description:"configuration file path" default:"mysqlmond.conf.yml"`
	Debug      bool   `short:"d" long:"debug" description:"debug mode"`
	Version    bool   `short:"V" long:"version" description:"display the version and exit"`
}

const (
	minUpdateEvery     = 10
	maxUpdateEvery     = 3600
	defaultUpdateEvery = 60
)

func main() {
	opts := parseCLI()

	if opts.Version {
		fmt.Printf("mysqlmond, version: %s\n", version)
		return
	}

	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	log := logger.New().With(slog.String("component", "main"))

	collr := mysql.New()
	if err := loadConfig(opts.ConfigFile, collr); err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}

	updateEvery := collr.UpdateEvery
	switch {
	case updateEvery == 0:
		updateEvery = defaultUpdateEvery
	case updateEvery < minUpdateEvery:
		log.Warningf("update_every %d is below the minimum, using %d", updateEvery, minUpdateEvery)
		updateEvery = minUpdateEvery
	case updateEvery > maxUpdateEvery:
		log.Warningf("update_every %d is above the maximum, using %d", updateEvery, maxUpdateEvery)
		updateEvery = maxUpdateEvery
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	enc := json.NewEncoder(os.Stdout)

	job := module.NewJob(module.JobConfig{
		Name:        "mysqlmond",
		ModuleName:  "mysql",
		Module:      collr,
		UpdateEvery: updateEvery,
		OnSnapshot: func(sn *snapshot.Snapshot) {
			log.Debugf("collected %d numeric metrics", len(sn.Metrics()))
			reportThresholds(log, sn)
			if err := enc.Encode(sn); err != nil {
				log.Errorf("error on writing snapshot: %v", err)
			}
		},
	})

	if err := job.AutoDetection(ctx); err != nil {
		log.Errorf("autodetection failed: %v", err)
		os.Exit(1)
	}

	go job.Start(ctx)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var clock int
	for {
		select {
		case <-ticker.C:
			clock++
			job.Tick(clock)
		case sig := <-ch:
			log.Infof("received %s signal, terminating...", sig)
			job.Stop()
			return
		}
	}
}

func parseCLI() *options {
	opts := &options{}
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "mysqlmond"
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	return opts
}

func loadConfig(path string, collr *mysql.Collector) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error on reading '%s': %v", path, err)
	}
	if err := yaml.Unmarshal(bs, &collr.Config); err != nil {
		return fmt.Errorf("error on parsing '%s': %v", path, err)
	}
	return nil
}

// reportThresholds logs resources crossing their warning/critical levels.
func reportThresholds(log *logger.Logger, sn *snapshot.Snapshot) {
	type check struct {
		resource string
		pct      float64
	}
	checks := []check{
		{"cpu", sn.SystemResources.CPUPercent},
		{"memory", sn.SystemResources.MemoryPercent},
		{"connections", sn.ConnectionPool.UsagePct},
	}
	if sn.SystemResources.DataDir != nil {
		checks = append(checks, check{"disk", sn.SystemResources.DataDir.Percent})
	}

	for _, check := range checks {
		switch mysql.ClassifyResource(check.resource, check.pct) {
		case mysql.SeverityCritical:
			log.Errorf("%s usage is critical: %.1f%%", check.resource, check.pct)
		case mysql.SeverityWarning:
			log.Warningf("%s usage is high: %.1f%%", check.resource, check.pct)
		}
	}
}
