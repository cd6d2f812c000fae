// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"

	"github.com/pageskr/ha-mysql-monitor/pkg/snapshot"
)

// MockConfiguration MockConfiguration.
type MockConfiguration struct {
	UpdateEvery int `yaml:"update_every" json:"update_every"`
}

// MockModule MockModule.
type MockModule struct {
	Base

	Config MockConfiguration

	FailOnInit bool

	InitFunc    func(ctx context.Context) error
	CheckFunc   func(ctx context.Context) error
	CollectFunc func(ctx context.Context) (*snapshot.Snapshot, error)
	CleanupFunc func(ctx context.Context)
	CleanupDone bool
}

// Init invokes InitFunc.
func (m *MockModule) Init(ctx context.Context) error {
	if m.FailOnInit {
		return context.DeadlineExceeded
	}
	if m.InitFunc == nil {
		return nil
	}
	return m.InitFunc(ctx)
}

// Check invokes CheckFunc.
func (m *MockModule) Check(ctx context.Context) error {
	if m.CheckFunc == nil {
		return nil
	}
	return m.CheckFunc(ctx)
}

// Collect invokes CollectFunc.
func (m *MockModule) Collect(ctx context.Context) (*snapshot.Snapshot, error) {
	if m.CollectFunc == nil {
		return snapshot.New(), nil
	}
	return m.CollectFunc(ctx)
}

// Cleanup sets CleanupDone to true.
func (m *MockModule) Cleanup(ctx context.Context) {
	if m.CleanupFunc != nil {
		m.CleanupFunc(ctx)
	}
	m.CleanupDone = true
}

func (m *MockModule) Configuration() any {
	return m.Config
}
