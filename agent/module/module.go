// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/logger"
	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

// Module is an interface that represents a monitoring module.
type Module interface {
	// Init does initialization.
	// If it returns error, the job will be disabled.
	Init(context.Context) error

	// Check is called after Init.
	// If it returns error, the job will be disabled.
	Check(context.Context) error

	// Collect performs one collection cycle and returns the snapshot.
	// A nil snapshot with a non-nil error means the cycle failed entirely.
	Collect(context.Context) (*snapshot.Snapshot, error)

	// Cleanup Cleanup
	Cleanup(context.Context)

	GetBase() *Base

	Configuration() any
}

// Base is a helper struct. All modules should embed this struct.
type Base struct {
	*logger.Logger
}

func (b *Base) GetBase() *Base { return b }
