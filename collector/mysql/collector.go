// SPDX-License-Identifier: GPL-3.0-or-later

// Package mysql implements a MySQL/MariaDB server monitoring collector.
// Each collection cycle produces a snapshot.Snapshot with server identity,
// counters, schema sizes, replication state and host resource usage.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/go-sql-driver/mysql"

	"github.com/pageskr/ha-mysql-monitor/agent/module"
	"github.com/pageskr/ha-mysql-monitor/pkg/confopt"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

func New() *Collector {
	return &Collector{
		Config: Config{
			Port:              3306,
			SSLVerify:         true,
			Timeout:           confopt.Duration(time.Second * 10),
			TableStatsLimit:   20,
			EnableQueryCache:  true,
			EnableReplication: true,
		},
	}
}

type Config struct {
	UpdateEvery       int              `yaml:"update_every,omitempty" json:"update_every"`
	DSN               string           `yaml:"dsn,omitempty" json:"dsn"`
	MyCNF             string           `yaml:"my.cnf,omitempty" json:"my.cnf"`
	Host              string           `yaml:"host,omitempty" json:"host"`
	Port              int              `yaml:"port,omitempty" json:"port"`
	Username          string           `yaml:"username,omitempty" json:"username"`
	Password          string           `yaml:"password,omitempty" json:"password"`
	UseSSL            bool             `yaml:"use_ssl,omitempty" json:"use_ssl"`
	SSLCA             string           `yaml:"ssl_ca,omitempty" json:"ssl_ca"`
	SSLVerify         bool             `yaml:"ssl_verify" json:"ssl_verify"`
	Timeout           confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`
	IncludeDatabases  []string         `yaml:"include_databases,omitempty" json:"include_databases"`
	ExcludeDatabases  []string         `yaml:"exclude_databases,omitempty" json:"exclude_databases"`
	EnableQueryCache  bool             `yaml:"enable_query_cache" json:"enable_query_cache"`
	EnableReplication bool             `yaml:"enable_replication" json:"enable_replication"`
	TableStatsLimit   int              `yaml:"table_stats_limit,omitempty" json:"table_stats_limit"`
}

type Collector struct {
	module.Base
	Config `yaml:",inline" json:""`

	db *sql.DB

	safeDSN   string
	version   *semver.Version
	isMariaDB bool
	isPercona bool

	varPerformanceSchema string
	varDataDir           string

	filter *dbFilter
	steps  []collectStep
}

func (c *Collector) Configuration() any {
	return c.Config
}

func (c *Collector) Init(context.Context) error {
	if c.MyCNF != "" {
		dsn, err := dsnFromFile(c.MyCNF)
		if err != nil {
			return err
		}
		c.DSN = dsn
	}

	if c.DSN == "" && c.Host != "" {
		dsn, err := c.buildDSN()
		if err != nil {
			return fmt.Errorf("error on building DSN: %v", err)
		}
		c.DSN = dsn
	}

	if c.DSN == "" {
		return errors.New("config: neither dsn, my.cnf nor host set")
	}

	cfg, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return fmt.Errorf("error on parsing DSN: %v", err)
	}

	cfg.Passwd = strings.Repeat("x", len(cfg.Passwd))
	c.safeDSN = cfg.FormatDSN()

	c.Debugf("using DSN [%s]", c.safeDSN)

	if c.TableStatsLimit <= 0 {
		c.TableStatsLimit = 20
	}

	c.filter = newDBFilter(c.IncludeDatabases, c.ExcludeDatabases)
	c.steps = c.enabledSteps()

	return nil
}

func (c *Collector) Check(ctx context.Context) error {
	if c.db == nil {
		if err := c.openConnection(ctx); err != nil {
			return err
		}
	}
	return c.collectVersion(ctx)
}

func (c *Collector) Collect(ctx context.Context) (*snapshot.Snapshot, error) {
	return c.collect(ctx)
}

func (c *Collector) Cleanup(context.Context) {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		c.Errorf("cleanup: error on closing the mysql database [%s]: %v", c.safeDSN, err)
	}
	c.db = nil
}
